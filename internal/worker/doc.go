// Package worker implements the render worker lifecycle and Redis Streams integration.
//
// The worker consumes render requests from a Redis stream consumer group,
// expands each template with the shared processor, stores the output in Redis
// and publishes the outcome to a result stream.
//
// A render request is a stream entry with a single "data" field holding JSON:
//
//	{"request_id": "42", "template": "# {{ title }}", "context": {"title": "dago"}}
//
// Example usage:
//
//	cfg, _ := config.Load()
//	redisClient := redis.NewClient(&redis.Options{...})
//	store := worker.NewResultStore(redisClient, cfg.ResultTTL, logger)
//
//	w := worker.NewWorker(cfg, redisClient, processor, store, logger)
//	if err := w.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Stop()
//
// Successful renders are published to RESULT_STREAM; failures, including
// renders aborted by a fatal block, go to RESULT_STREAM + ".errors".
//
// Health checks are provided via a separate HTTP server:
//
//	healthServer := worker.NewHealthServer(8083, redisClient, processor, logger)
//	healthServer.Start()
//	defer healthServer.Stop()
package worker
