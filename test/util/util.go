// Package util provides helpers shared by the broker integration tests.
package util

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// BrokerReadyTimeout bounds the wait for the broker to route messages.
const BrokerReadyTimeout = 15 * time.Second

const pollInterval = 100 * time.Millisecond

// DockerAvailable reports whether a docker binary is on the PATH.
func DockerAvailable() bool {
	_, err := exec.LookPath("docker")
	return err == nil
}

// SetpointBroker is a disposable mosquitto broker whose ACL only lets
// clients use the setpoint and ack topics under Prefix.
type SetpointBroker struct {
	URL    string
	Prefix string
	cont   tc.Container
	dir    string
}

// brokerFiles renders mosquitto.conf and the ACL for prefix.
func brokerFiles(prefix string) (conf, acl string) {
	conf = `listener 1883
allow_anonymous true
persistence false
acl_file /mosquitto/config/acl
log_dest stdout
log_type error
log_type warning
`
	acl = fmt.Sprintf("topic readwrite %[1]s/+/setpoint\ntopic readwrite %[1]s/+/ack\n", prefix)
	return conf, acl
}

// StartSetpointBroker launches mosquitto in a container and waits until a
// message published on an ack topic is delivered back to a subscriber.
func StartSetpointBroker(ctx context.Context, prefix string) (*SetpointBroker, error) {
	dir, err := os.MkdirTemp("", "setpoint-broker")
	if err != nil {
		return nil, err
	}
	b := &SetpointBroker{Prefix: prefix, dir: dir}
	conf, acl := brokerFiles(prefix)
	files := map[string]string{"mosquitto.conf": conf, "acl": acl}
	var mounts []tc.ContainerFile
	for name, body := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			b.Close()
			return nil, err
		}
		mounts = append(mounts, tc.ContainerFile{
			HostFilePath:      path,
			ContainerFilePath: "/mosquitto/config/" + name,
			FileMode:          0o644,
		})
	}

	b.cont, err = tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "eclipse-mosquitto:2.0",
			ExposedPorts: []string{"1883/tcp"},
			WaitingFor:   wait.ForListeningPort("1883/tcp"),
			Files:        mounts,
		},
		Started: true,
	})
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("start mosquitto: %w", err)
	}
	host, err := b.cont.Host(ctx)
	if err != nil {
		b.Close()
		return nil, err
	}
	port, err := b.cont.MappedPort(ctx, "1883")
	if err != nil {
		b.Close()
		return nil, err
	}
	b.URL = fmt.Sprintf("tcp://%s:%s", host, port.Port())

	readyCtx, cancel := context.WithTimeout(ctx, BrokerReadyTimeout)
	defer cancel()
	if err := b.waitForAckRoundTrip(readyCtx); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}

// waitForAckRoundTrip retries until the broker delivers a message on
// <prefix>/readiness/ack, which also proves the ACL admits ack topics.
func (b *SetpointBroker) waitForAckRoundTrip(ctx context.Context) error {
	topic := b.Prefix + "/readiness/ack"
	for {
		if err := b.roundTrip(topic); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("broker %s not ready: %w", b.URL, ctx.Err())
		case <-time.After(pollInterval):
		}
	}
}

func (b *SetpointBroker) roundTrip(topic string) error {
	cli := paho.NewClient(paho.NewClientOptions().AddBroker(b.URL).SetClientID("readiness"))
	if tok := cli.Connect(); !tok.WaitTimeout(time.Second) || tok.Error() != nil {
		return fmt.Errorf("connect: %v", tok.Error())
	}
	defer cli.Disconnect(100)
	got := make(chan struct{}, 1)
	sub := cli.Subscribe(topic, 1, func(paho.Client, paho.Message) {
		select {
		case got <- struct{}{}:
		default:
		}
	})
	if !sub.WaitTimeout(time.Second) || sub.Error() != nil {
		return fmt.Errorf("subscribe: %v", sub.Error())
	}
	cli.Publish(topic, 1, false, `{"command_id":"readiness"}`).WaitTimeout(time.Second)
	select {
	case <-got:
		return nil
	case <-time.After(time.Second):
		return fmt.Errorf("no delivery on %s", topic)
	}
}

// Close stops the container and removes the config files.
func (b *SetpointBroker) Close() {
	if b.cont != nil {
		_ = b.cont.Terminate(context.Background())
	}
	_ = os.RemoveAll(b.dir)
}

// WaitForHTTP polls url until it answers 200 or the context ends.
func WaitForHTTP(ctx context.Context, url string) error {
	for {
		resp, err := http.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s not ready: %w", url, ctx.Err())
		case <-time.After(pollInterval):
		}
	}
}
