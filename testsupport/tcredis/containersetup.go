//nolint:errcheck // testsetup
package tcredis

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// SetupTestRedis starts (or reuses) a redis server and returns a flushed client
func SetupTestRedis() *redis.Client {
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "redis:7",
				Name:         "strathub-service-test-redis",
				ExposedPorts: []string{"6379/tcp"},
				WaitingFor: wait.ForLog("Ready to accept connections").
					WithStartupTimeout(30 * time.Second),
			},
			Started: true,
			Reuse:   true,
		})
	if err != nil {
		log.Fatal(err)
	}
	port, _ := container.MappedPort(ctx, "6379/tcp")
	host, _ := container.Host(ctx)
	client := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", host, port.Port()),
	})
	if err := client.FlushAll(ctx).Err(); err != nil {
		log.Fatal(err)
	}
	return client
}
