package dataset

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"jungle/engine"
)

// Publisher is the part of *nats.Conn the sink needs.
type Publisher interface {
	Publish(subject string, data []byte) error
	Flush() error
}

// NATSSink publishes each record as gzipped JSON on a subject. Whole games
// exceed the default NATS payload limit uncompressed.
type NATSSink struct {
	pub     Publisher
	subject string
	close   func()
}

func NewNATSSink(pub Publisher, subject string) *NATSSink {
	return &NATSSink{pub: pub, subject: subject}
}

// ConnectNATS dials a NATS server and returns a sink that owns the connection.
func ConnectNATS(url, subject string) (*NATSSink, error) {
	nc, err := nats.Connect(url, nats.Name("jungle-selfplay"))
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", url, err)
	}
	s := NewNATSSink(nc, subject)
	s.close = nc.Close
	return s, nil
}

func (s *NATSSink) Write(ctx context.Context, rec engine.GameRecord) error {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := json.NewEncoder(gz).Encode(rec); err != nil {
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}
	data := buf.Bytes()
	if err := s.pub.Publish(s.subject, data); err != nil {
		return fmt.Errorf("publish game %d: %w", rec.ID, err)
	}
	zerolog.Ctx(ctx).Debug().Msgf("published game %d: %d bytes on %s", rec.ID, len(data), s.subject)
	return nil
}

func (s *NATSSink) Close() error {
	err := s.pub.Flush()
	if s.close != nil {
		s.close()
	}
	return err
}
