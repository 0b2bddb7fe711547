// Package util holds helpers for tests that need a live broker or a running
// gridmon service.
package util

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	MosquittoReadyTimeout = 5 * time.Second
	MetricTimeout         = 5 * time.Second

	mosquittoImage = "eclipse-mosquitto:2.0"
	pollInterval   = 50 * time.Millisecond
)

// anonymous listener, no persistence
const mosquittoConf = `listener 1883
allow_anonymous true
persistence false
log_dest stdout
log_type error
log_type warning
`

// Broker is a disposable Mosquitto container.
type Broker struct {
	URL string
	c   tc.Container
}

// Close terminates the container.
func (b *Broker) Close() {
	_ = tc.TerminateContainer(b.c)
}

// poll calls probe until it reports done, returns an error or ctx ends.
func poll(ctx context.Context, probe func(context.Context) (bool, error)) error {
	t := time.NewTicker(pollInterval)
	defer t.Stop()
	for {
		done, err := probe(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

func get(ctx context.Context, url string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	return resp.StatusCode, body, err
}

// WaitForHTTP polls url until it answers 200.
func WaitForHTTP(ctx context.Context, url string) error {
	err := poll(ctx, func(ctx context.Context) (bool, error) {
		code, _, err := get(ctx, url)
		return err == nil && code == http.StatusOK, nil
	})
	if err != nil {
		return fmt.Errorf("%s not ready: %w", url, err)
	}
	return nil
}

// WaitForMetric polls a Prometheus endpoint until its exposition contains
// substr.
func WaitForMetric(ctx context.Context, metricsURL, substr string) error {
	err := poll(ctx, func(ctx context.Context) (bool, error) {
		_, body, err := get(ctx, metricsURL)
		if err != nil {
			return false, nil
		}
		return strings.Contains(string(body), substr), nil
	})
	if err != nil {
		return fmt.Errorf("metric %q not found: %w", substr, err)
	}
	return nil
}

// NewBroker starts Mosquitto and waits until it accepts MQTT connections.
func NewBroker(ctx context.Context) (*Broker, error) {
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        mosquittoImage,
			ExposedPorts: []string{"1883/tcp"},
			WaitingFor:   wait.ForListeningPort("1883/tcp"),
			Files: []tc.ContainerFile{{
				Reader:            strings.NewReader(mosquittoConf),
				ContainerFilePath: "/mosquitto/config/mosquitto.conf",
				FileMode:          0o644,
			}},
		},
		Started: true,
	})
	b := &Broker{c: cont}
	if err != nil {
		b.Close()
		return nil, err
	}
	endpoint, err := cont.PortEndpoint(ctx, "1883/tcp", "tcp")
	if err != nil {
		b.Close()
		return nil, err
	}
	b.URL = endpoint

	readyCtx, cancel := context.WithTimeout(ctx, MosquittoReadyTimeout)
	defer cancel()
	if err := poll(readyCtx, func(context.Context) (bool, error) { return canConnect(b.URL), nil }); err != nil {
		b.Close()
		return nil, errors.Join(errors.New("mosquitto not ready"), err)
	}
	return b, nil
}

func canConnect(url string) bool {
	cli := paho.NewClient(paho.NewClientOptions().AddBroker(url).SetClientID("gridmon-probe"))
	tok := cli.Connect()
	if !tok.WaitTimeout(time.Second) || tok.Error() != nil {
		return false
	}
	cli.Disconnect(100)
	return true
}
