// @title           DocSearch API
// @version         1.0
// @description     Asynchronous OCR ingestion of uploaded documents and semantic search over them.
// @termsOfService  http://swagger.io/terms/

// @contact.name    DocSearch maintainers
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/akolanti/DocSearch/internal/config"
	"github.com/akolanti/DocSearch/internal/data/store"
	"github.com/akolanti/DocSearch/internal/domain/jobModel"
	"github.com/akolanti/DocSearch/internal/handlers"
	"github.com/akolanti/DocSearch/internal/job"
	"github.com/akolanti/DocSearch/internal/mcpserver"
	"github.com/akolanti/DocSearch/internal/middleware"
	"github.com/akolanti/DocSearch/internal/queue"
	"github.com/akolanti/DocSearch/internal/queue/sqsQueue"
	"github.com/akolanti/DocSearch/internal/rag"
	"github.com/akolanti/DocSearch/internal/rag/embedding"
	"github.com/akolanti/DocSearch/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/DocSearch/internal/rag/embedding/inferenceEmbedding"
	"github.com/akolanti/DocSearch/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/DocSearch/internal/rag/ingest"
	"github.com/akolanti/DocSearch/internal/rag/ocr/textractOCR"
	"github.com/akolanti/DocSearch/internal/rag/vectorDB"
	"github.com/akolanti/DocSearch/internal/rag/vectorDB/memoryDB"
	"github.com/akolanti/DocSearch/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/DocSearch/internal/server"
	"github.com/akolanti/DocSearch/internal/storage/s3Upload"
	"github.com/akolanti/DocSearch/internal/worker"
	"github.com/akolanti/DocSearch/pkg/logger_i"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {
	// a missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	//init buffered task channel
	taskChannel := make(chan jobModel.Task, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and stores
	serviceConfig := job.ServiceConfig{
		TaskChannel:       taskChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
	}
	jobStore, metadataStore := store.GetRedisJobStore(serviceContext), store.GetRedisMetadataStore(serviceContext)
	if (jobStore == nil || metadataStore == nil) && config.FALLBACK_REDIS_TO_INTERNALSTORE {
		logger.Error("Redis stores are offline, using in-memory stores")
		serviceConfig.JobStore = store.InitInMemoryJobStore()
		serviceConfig.MetadataStore = store.InitInMemoryMetadataStore()
	} else if jobStore == nil || metadataStore == nil {
		logger.Error("Redis stores are offline. Shutting down.")
		return
	} else {
		serviceConfig.JobStore = jobStore
		serviceConfig.MetadataStore = metadataStore
	}
	logger.Info("Starting job service")
	service := job.InitJobService(serviceConfig)

	index := initIndex(serviceContext, logger)
	if index == nil {
		logger.Error("Vector index is unavailable. Shutting down.")
		return
	}
	embedder, health := initEmbedder(serviceContext, logger)
	if embedder == nil {
		logger.Error("Embedding provider failed to initialize. Shutting down.", "provider", config.EmbeddingProvider())
		return
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(serviceContext, awsconfig.WithRegion(config.AWSRegion()))
	if err != nil {
		logger.Error("Could not load AWS configuration. Shutting down.", "error", err)
		return
	}
	ocrClient := textractOCR.New(awsCfg)

	ragService := rag.NewService(rag.Dependencies{
		Starter:     ocrClient,
		Pager:       ocrClient,
		Embedder:    embedder,
		Index:       index,
		Jobs:        service.JobStore,
		Metadata:    service.MetadataStore,
		Target:      ingest.NotificationTargetFromEnv(),
		Coordinator: ingest.DefaultCoordinatorConfig(),
	})

	//init worker pool
	pool := worker.NewPool(service, ragService)
	pool.Start(stopWorkerChannel, &workerWaitGroup)

	//queue consumers feed the pool; either may be disabled
	sqsClient := sqs.NewFromConfig(awsCfg)
	if url := config.CompletionQueueURL(); url != "" {
		go sqsQueue.NewConsumer(sqsClient, "completion", url, queue.CompletionTasks, service.Enqueue).Run(serviceContext)
	} else {
		logger.Warn("COMPLETION_QUEUE_URL not set, OCR completions will not be consumed")
	}
	if url := config.UploadEventQueueURL(); url != "" {
		go sqsQueue.NewConsumer(sqsClient, "upload_events", url, queue.ObjectCreatedTasks, service.Enqueue).Run(serviceContext)
	} else {
		logger.Warn("UPLOAD_EVENT_QUEUE_URL not set, ingestion only starts through POST /ingest")
	}

	var uploads handlers.UploadIssuer
	if bucket := config.UploadBucket(); bucket != "" {
		uploads = s3Upload.New(awsCfg, bucket)
	}

	h := handlers.NewHandler(ragService, uploads, health)
	router := server.NewRouter(h, middleware.NewChain(middleware.NewDefaultRateLimiter()), mcpserver.New(ragService).Handler())
	srv := server.CreateServer(listenAddr, router)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go srv.ShutDownHandler(shutdownParams)
	go srv.ListenAndServe()

	<-stopExecution
	logger.Info("Server stopped")
}

func initIndex(ctx context.Context, logger *logger_i.Logger) vectorDB.DocumentIndex {
	if q := qdrantDB.GetQdrantClient(ctx); q != nil {
		return q
	}
	if !config.FALLBACK_QDRANT_TO_MEMORY {
		return nil
	}
	logger.Error("Qdrant is offline, using the in-memory index. Indexed documents are lost on restart.")
	return memoryDB.New(int(config.EmbeddingDimension))
}

// initEmbedder picks the provider from EMBEDDING_PROVIDER. Only the inference container exposes a health ping.
func initEmbedder(ctx context.Context, logger *logger_i.Logger) (embedding.Embedder, embedding.HealthChecker) {
	switch config.EmbeddingProvider() {
	case config.EmbeddingProviderGemini:
		g := googleEmbedding.NewGoogleEmbedder(ctx, config.GoogleEmbeddingModel, config.GoogleAPIKey())
		if g == nil {
			return nil, nil
		}
		return g, nil
	case config.EmbeddingProviderOpenAI:
		return openaiEmbedding.New(config.OpenAIAPIKey(), config.OpenAIBaseURL(), config.OpenAIEmbeddingModel), nil
	case config.EmbeddingProviderInference:
		c := inferenceEmbedding.New(config.InferenceEndpoint())
		return c, c
	default:
		logger.Error("Unknown embedding provider")
		return nil, nil
	}
}
