// Package config 运行配置：.env 文件与环境变量，环境变量优先。
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// defaultPromptTemplate 中性词生成提示词模板。
// 占位：%[1]s 当前行，%[2]s 前文，%[3]s 后文。
const defaultPromptTemplate = `你是一个专业的内容分析助手，擅长根据上下文生成精准的描述词。
**当前行**
<current_line>
%[1]s
</current_line>
**前序内容**
<before_text>
%[2]s
</before_text>
**后序内容**
<after_text>
%[3]s
</after_text>

**任务要求**
1. 生成中性描述词，填入占位符位置。
2. 前序字段继承原则：优先继承前文的字段名称（如"姓名:____"直接继承"姓名"）。
3. 后序字段继承原则：如果前序字段不明确，可结合后文字段（如"xxxx专业申请"应输出"专业名称"）。
4. 如果没有前序和后续字段名称，根据上下文提取最贴切的名词短语。
5. 安全边界：如上下文字段不明确，请返回"???"。
6. 使用分隔符"####"区分思考过程与最终答案，"####"后以yaml格式输出：

思考1:（不超过10个字）
思考2:（不超过10个字）
####
` + "```yaml\nneutral_term: \"提取的中性词\"\n```\n"

// LLMConfig 大模型配置
type LLMConfig struct {
	APIKey         string
	BaseURL        string
	ModelName      string
	MaxTokens      int
	Temperature    float64
	TimeoutSeconds int
	PromptTemplate string
}

// Config 全局配置
type Config struct {
	LLM                 LLMConfig
	ContextWindow       int    // 上下文窗口（字符数）
	MinRepetition       int    // 字符占位符最小重复次数
	OutputFormat        string // 中性词写入格式
	MaxConcurrent       int    // 容器处理并发度
	EnableModelDetector bool   // 是否启用大模型检测器
}

// Load 加载配置。.env 不存在时直接使用环境变量。
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("未找到 .env 文件，使用环境变量")
	}

	return &Config{
		LLM: LLMConfig{
			APIKey:         getEnvFirst("DASHSCOPE_API_KEY", "OPENAI_API_KEY"),
			BaseURL:        getEnv("DASHSCOPE_API_BASE", "https://dashscope.aliyuncs.com/compatible-mode/v1"),
			ModelName:      getEnv("LLM_MODEL_NAME", "qwen-max"),
			MaxTokens:      getEnvInt("MAX_TOKENS", 100),
			Temperature:    getEnvFloat("TEMPERATURE", 0.7),
			TimeoutSeconds: getEnvInt("TIMEOUT", 30),
			PromptTemplate: getEnv("PROMPT_TEMPLATE", defaultPromptTemplate),
		},
		ContextWindow:       getEnvInt("CONTEXT_WINDOW", 100),
		MinRepetition:       getEnvInt("MIN_REPETITION", 3),
		OutputFormat:        getEnv("OUTPUT_FORMAT", "{{%s}}"),
		MaxConcurrent:       getEnvInt("MAX_CONCURRENT", 4),
		EnableModelDetector: getEnvBool("ENABLE_LLM_DETECTOR", false),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFirst(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
