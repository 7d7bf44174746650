package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	IS_PROD                         = false
	LOG_LEVEL_PROD                  = slog.LevelInfo
	FALLBACK_REDIS_TO_INTERNALSTORE = true //if redis init fails, it falls back to an internals in-memory store
	FALLBACK_QDRANT_TO_MEMORY       = true
	TRACE_ID_KEY                    = "traceId"
	RATE_LIMIT_PER_SECOND           = 5
	BURST_RATE_LIMIT_PER_SECOND     = 10

	//all-MiniLM-L6-v2 output size, the index is created with this dimension
	EmbeddingDimension int32 = 384
	EmbeddingDBName          = "documents"

	//elastic worker pool
	RequestsPerNewWorkerCount int64 = 5
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute
	TaskTimeout                     = 5 * time.Minute

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 30 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 15 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//task buffer limit
	BufferLimit = 100

	//chunking - the inference model truncates around 256 tokens
	ChunkCharLimit  = 1000
	EmbeddingFanOut = 4

	//per call timeouts, a timeout is a transient failure
	OCRCallTimeout       = 30 * time.Second
	EmbeddingCallTimeout = 30 * time.Second
	IndexWriteTimeout    = 30 * time.Second
	SearchTimeout        = 15 * time.Second

	//retry policy for embedding and index writes
	RetryMaxAttempts = 3
	RetryBaseDelay   = 200 * time.Millisecond
	RetryMaxDelay    = 5 * time.Second

	//ocr
	OCRMaxResultsPerPage int32 = 1000
	OCRMaxPages                = 10000

	//search
	DefaultSearchK   = 5
	MaxSearchK       = 100
	PreviewCharLimit = 500

	//vectorDB
	QdrantHost             = "localhost"
	QdrantGrpcPort         = 6334
	QdrantUseTLS           = false //set for https
	QdrantPoolSize         = 1     //2-5 is preferred for prod according to documentation

	//embeddings
	EmbeddingProviderInference = "inference"
	EmbeddingProviderGemini    = "gemini"
	EmbeddingProviderOpenAI    = "openai"
	DefaultInferenceEndpoint   = "http://localhost:8080"
	GoogleEmbeddingModel       = "gemini-embedding-001"
	OpenAIEmbeddingModel       = "text-embedding-3-small"

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	//redis has 16 DB we can use
	RedisJobStore      = 0
	RedisMetadataStore = 1

	//redis timeouts
	RedisJobStoreTTL      = 7 * 24 * time.Hour
	RedisMetadataStoreTTL = 0 //metadata records are kept

	//sqs long polling
	SQSWaitTimeSeconds     int32 = 20
	SQSMaxMessages         int32 = 10
	SQSVisibilityTimeout   int32 = 600
	SQSReceiveErrorBackoff       = 5 * time.Second

	//upload urls
	UploadURLExpiry = 5 * time.Minute
)

// GetEnv returns the environment value for key or the fallback when unset.
func GetEnv(key string, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func GetEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func GetEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func IsProd() bool {
	return GetEnvBool("IS_PROD", IS_PROD)
}

func LogLevel() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if IsProd() {
		return LOG_LEVEL_PROD
	}
	return slog.LevelDebug
}

func RedisAddress() string  { return GetEnv("REDIS_ADDR", RedisAddr) }
func RedisPassword() string { return os.Getenv("REDIS_PASSWORD") }

func QdrantAddress() (string, int) {
	return GetEnv("QDRANT_HOST", QdrantHost), GetEnvInt("QDRANT_PORT", QdrantGrpcPort)
}
func QdrantAPIKey() string     { return os.Getenv("QDRANT_API_KEY") }
func QdrantCollection() string { return GetEnv("QDRANT_COLLECTION", EmbeddingDBName) }

func EmbeddingProvider() string {
	return strings.ToLower(GetEnv("EMBEDDING_PROVIDER", EmbeddingProviderInference))
}
func InferenceEndpoint() string {
	return strings.TrimRight(GetEnv("EMBEDDING_ENDPOINT", DefaultInferenceEndpoint), "/")
}
func GoogleAPIKey() string    { return os.Getenv("GOOGLE_API_KEY") }
func OpenAIAPIKey() string    { return os.Getenv("OPENAI_API_KEY") }
func OpenAIBaseURL() string   { return os.Getenv("OPENAI_BASE_URL") }
func ChunkLimit() int         { return GetEnvInt("CHUNK_CHAR_LIMIT", ChunkCharLimit) }
func EmbeddingWorkers() int   { return GetEnvInt("EMBEDDING_FAN_OUT", EmbeddingFanOut) }
func AWSRegion() string       { return GetEnv("AWS_REGION", "us-east-1") }
func UploadBucket() string    { return os.Getenv("S3_INPUT_BUCKET") }
func OCROutputBucket() string { return os.Getenv("TEXTRACT_OUTPUT_S3_BUCKET") }
func OCROutputPrefix() string { return GetEnv("TEXTRACT_OUTPUT_PREFIX", "textract-output") }
func OCRTopicArn() string     { return os.Getenv("TEXTRACT_SNS_TOPIC_ARN") }
func OCRRoleArn() string      { return os.Getenv("TEXTRACT_SNS_TOPIC_ROLE_ARN") }

// CompletionQueueURL is the SQS queue subscribed to the Textract completion topic.
func CompletionQueueURL() string { return os.Getenv("COMPLETION_QUEUE_URL") }

// UploadEventQueueURL is the SQS queue receiving s3:ObjectCreated events.
func UploadEventQueueURL() string { return os.Getenv("UPLOAD_EVENT_QUEUE_URL") }
