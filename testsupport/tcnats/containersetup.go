//nolint:errcheck // testsetup
package tcnats

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// SetupTestNats starts (or reuses) a NATS server with JetStream enabled
// and returns a connection to it
func SetupTestNats() *nats.Conn {
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "nats:2.10",
				Name:         "strathub-service-test-nats",
				ExposedPorts: []string{"4222/tcp"},
				Cmd:          []string{"-js"},
				WaitingFor: wait.ForLog("Server is ready").
					WithStartupTimeout(30 * time.Second),
			},
			Started: true,
			Reuse:   true,
		})
	if err != nil {
		log.Fatal(err)
	}
	port, _ := container.MappedPort(ctx, "4222/tcp")
	host, _ := container.Host(ctx)
	nc, err := nats.Connect(fmt.Sprintf("nats://%s:%s", host, port.Port()))
	if err != nil {
		log.Fatal(err)
	}
	return nc
}
