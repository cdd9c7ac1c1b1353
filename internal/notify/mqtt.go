package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/i474232898/weather-notifier/internal/common"
	"github.com/i474232898/weather-notifier/internal/weather"
)

const publishTimeout = 10 * time.Second

var errInvalidTopicPrefix = errors.New("mqtt topic prefix must not contain wildcards")

type mqttPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTSink publishes each dataset, retained, to {prefix}/{dataset}.
type MQTTSink struct {
	client mqttPublisher
	closer func()
	prefix string
}

// ConnectMQTT connects to brokerURL and returns a sink publishing under prefix.
func ConnectMQTT(brokerURL, clientID, prefix string, logger *zap.Logger) (*MQTTSink, error) {
	if common.HasAny(prefix, "+", "#") {
		return nil, errInvalidTopicPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := mqtt.NewClientOptions()
	url := strings.TrimSpace(brokerURL)
	if strings.HasPrefix(url, "mqtt://") {
		url = "tcp://" + strings.TrimPrefix(url, "mqtt://")
	}
	opts.AddBroker(url)
	if strings.TrimSpace(clientID) == "" {
		clientID = "weather-notifier-" + time.Now().Format("150405.000")
	}
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	if strings.HasPrefix(url, "ssl://") || strings.HasPrefix(url, "tls://") {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", zap.Error(err))
	}
	opts.OnConnect = func(_ mqtt.Client) {
		logger.Info("mqtt connected", zap.String("broker", url))
	}

	c := mqtt.NewClient(opts)
	tok := c.Connect()
	if ok := tok.WaitTimeout(15 * time.Second); !ok {
		return nil, fmt.Errorf("mqtt connect to %s timed out", url)
	}
	if err := tok.Error(); err != nil {
		return nil, err
	}

	sink := newMQTTSink(c, prefix)
	sink.closer = func() { c.Disconnect(1000) }
	return sink, nil
}

func newMQTTSink(client mqttPublisher, prefix string) *MQTTSink {
	return &MQTTSink{client: client, prefix: strings.TrimSuffix(prefix, "/")}
}

// Topic returns the topic a dataset is published to.
func (m *MQTTSink) Topic(name weather.DatasetName) string {
	return m.prefix + "/" + string(name)
}

func (m *MQTTSink) Emit(ctx context.Context, ds weather.Dataset) error {
	payload, err := encode(ds)
	if err != nil {
		return err
	}

	tok := m.client.Publish(m.Topic(ds.Name), 1, true, payload)
	timeout := publishTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d < timeout {
			timeout = d
		}
	}
	if !tok.WaitTimeout(timeout) {
		return fmt.Errorf("mqtt publish to %s timed out", m.Topic(ds.Name))
	}
	return tok.Error()
}

// Close disconnects from the broker.
func (m *MQTTSink) Close() {
	if m == nil || m.closer == nil {
		return
	}
	m.closer()
}
