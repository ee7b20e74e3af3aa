/*
Copyright 2024 Chartfax Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package chartfax

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log"

	"github.com/hibiken/asynq"

	"github.com/chartfax/chartfax/config"
	redis_db "github.com/chartfax/chartfax/internal/redis-db"
	"github.com/chartfax/chartfax/model"
)

// Queue represents a queue for handling various tasks.
type Queue struct {
	Client    *asynq.Client
	Inspector *asynq.Inspector
}

// FaxTaskPayload is the body of a queued fax processing task.
type FaxTaskPayload struct {
	FaxID string `json:"fax_id"`
}

// NewQueue initializes a new Queue instance with the provided configuration.
func NewQueue(conf *config.Configuration) *Queue {
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns, conf.Redis.SkipTLSVerify)
	if err != nil {
		log.Fatalf("Error parsing Redis URL: %v", err)
	}

	queueOptions := asynq.RedisClientOpt{Addr: redisOption.Addr, Password: redisOption.Password, DB: redisOption.DB, TLSConfig: redisOption.TLSConfig}
	client := asynq.NewClient(queueOptions)
	inspector := asynq.NewInspector(queueOptions)
	return &Queue{
		Client:    client,
		Inspector: inspector,
	}
}

// Enqueue adds an inbound fax to the processing queue.
//
// Faxes are sharded over a fixed set of queues by their carrier job ID
// so redeliveries of the same fax land in the same queue and are
// serialized behind its TaskID.
func (q *Queue) Enqueue(ctx context.Context, fax *model.InboundFax) error {
	ctx, span := tracer.Start(ctx, "Adding Fax To Redis Queue")
	defer span.End()

	payload, err := json.Marshal(FaxTaskPayload{FaxID: fax.FaxID})
	if err != nil {
		return err
	}
	info, err := q.Client.EnqueueContext(ctx, q.getTask(fax, payload), asynq.MaxRetry(5))
	if err != nil {
		log.Println(err, info)
		return err
	}
	log.Printf(" [*] Successfully enqueued fax: %+v", fax.FaxID)
	return nil
}

func (q *Queue) getTask(fax *model.InboundFax, payload []byte) *asynq.Task {
	cnf, err := config.Fetch()
	if err != nil {
		log.Printf("Error fetching config: %v", err)
		return asynq.NewTask("new:fax_1", payload, asynq.TaskID(fax.FaxID), asynq.Queue("new:fax_1"))
	}
	queueIndex := hashJobID(fax.JobID) % cnf.Queue.NumberOfQueues
	queueName := fmt.Sprintf("%s_%d", cnf.Queue.FaxQueue, queueIndex+1)

	return asynq.NewTask(queueName, payload, asynq.TaskID(fax.FaxID), asynq.Queue(queueName))
}

func hashJobID(id string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return int(h.Sum32())
}
