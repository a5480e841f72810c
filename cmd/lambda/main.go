package main

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipegen/config"
	"github.com/pageza/recipegen/internal/logging"
	"github.com/pageza/recipegen/internal/server"
)

var (
	// ginLambda wraps the gin engine for API Gateway HTTP API events
	ginLambda *ginadapter.GinLambdaV2

	logger *zap.Logger

	// coldStart tracks whether this is the first invocation of the container
	coldStart = true
)

// init runs once per cold start
func init() {
	start := time.Now()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger = logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	srv := server.New(cfg, logger)
	ginLambda = ginadapter.NewV2(srv.Handler())

	logger.Info("lambda cold start completed", zap.Duration("duration", time.Since(start)))
}

// Handler is the Lambda function handler
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	if coldStart {
		logger.Info("first invocation", zap.String("request_id", req.RequestContext.RequestID))
		coldStart = false
	}
	return ginLambda.ProxyWithContext(ctx, req)
}

func main() {
	lambda.Start(Handler)
}
