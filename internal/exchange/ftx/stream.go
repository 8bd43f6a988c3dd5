package ftx

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	streamPingInterval = 15 * time.Second
	streamReadTimeout  = 3 * streamPingInterval
	streamWriteTimeout = 5 * time.Second
)

// Stream is a websocket session. Writes are serialized; Messages may be
// called once.
type Stream struct {
	conn *websocket.Conn
	log  logrus.FieldLogger

	writeMu      sync.Mutex
	pingInterval time.Duration
	closeOnce    sync.Once
}

type StreamMessage struct {
	Channel string          `json:"channel"`
	Market  string          `json:"market"`
	Type    string          `json:"type"`
	Code    int             `json:"code"`
	Msg     string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

// Trades decodes the payload of a trades channel update.
func (m StreamMessage) Trades() ([]Trade, error) {
	if m.Channel != "trades" {
		return nil, errors.Errorf("ftx stream: %s message has no trades", m.Channel)
	}
	var trades []Trade
	if err := json.Unmarshal(m.Data, &trades); err != nil {
		return nil, errors.Wrap(err, "ftx stream: decode trades")
	}
	return trades, nil
}

type streamOp struct {
	Op      string `json:"op"`
	Channel string `json:"channel,omitempty"`
	Market  string `json:"market,omitempty"`
	Args    any    `json:"args,omitempty"`
}

type loginArgs struct {
	Key        string `json:"key"`
	Sign       string `json:"sign"`
	Time       int64  `json:"time"`
	Subaccount string `json:"subaccount,omitempty"`
}

// NewStream dials the websocket endpoint and logs in when the client holds
// credentials. Public channels work without login.
func (c *Client) NewStream(ctx context.Context) (*Stream, error) {
	if c.wsURL == "" {
		return nil, errors.New("ftx stream: ws url required")
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.wsURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "ftx stream: dial")
	}
	s := &Stream{
		conn:         conn,
		log:          c.log.WithField("event", "ftx_stream"),
		pingInterval: streamPingInterval,
	}
	if c.apiKey != "" && c.apiSecret != "" {
		if err := s.write(streamOp{Op: "login", Args: c.loginArgs()}); err != nil {
			_ = conn.Close()
			return nil, errors.Wrap(err, "ftx stream: login")
		}
	}
	return s, nil
}

func (c *Client) loginArgs() loginArgs {
	ts := c.now().UnixMilli()
	return loginArgs{
		Key:        c.apiKey,
		Sign:       sign(c.apiSecret, strconv.FormatInt(ts, 10)+"websocket_login"),
		Time:       ts,
		Subaccount: c.subaccount,
	}
}

func (s *Stream) Subscribe(channel, market string) error {
	if strings.TrimSpace(channel) == "" {
		return invalid("subscribe", "channel is required")
	}
	return s.write(streamOp{Op: "subscribe", Channel: channel, Market: market})
}

func (s *Stream) Unsubscribe(channel, market string) error {
	if strings.TrimSpace(channel) == "" {
		return invalid("unsubscribe", "channel is required")
	}
	return s.write(streamOp{Op: "unsubscribe", Channel: channel, Market: market})
}

func (s *Stream) write(op streamOp) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	return s.conn.WriteJSON(op)
}

// Messages starts the reader and pinger. The message channel closes when the
// connection ends; the first read error, and any error frames from the
// server, are reported on the error channel.
func (s *Stream) Messages(ctx context.Context) (<-chan StreamMessage, <-chan error) {
	messages := make(chan StreamMessage)
	errCh := make(chan error, 4)
	done := make(chan struct{})

	reportErr := func(err error) {
		if err == nil {
			return
		}
		select {
		case errCh <- err:
		default:
			s.log.WithError(err).Warn("stream error dropped")
		}
	}

	go func() {
		defer close(done)
		defer close(messages)
		defer s.Close()

		for {
			_ = s.conn.SetReadDeadline(time.Now().Add(streamReadTimeout))
			_, data, err := s.conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					reportErr(err)
				}
				return
			}
			if len(data) == 0 {
				continue
			}
			var msg StreamMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				s.log.WithError(err).Debug("undecodable stream frame")
				continue
			}
			switch msg.Type {
			case "pong", "subscribed", "unsubscribed":
				continue
			case "error":
				reportErr(newAPIError(msg.Code, msg.Msg))
				continue
			}
			select {
			case messages <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.write(streamOp{Op: "ping"}); err != nil {
					reportErr(err)
					s.Close()
					return
				}
			case <-done:
				return
			case <-ctx.Done():
				s.Close()
				return
			}
		}
	}()

	return messages, errCh
}

func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.conn.Close()
	})
	return err
}
