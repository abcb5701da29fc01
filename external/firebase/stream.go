package firebase

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/starleague/internal/domain/remote"
	"github.com/riskibarqy/starleague/internal/infrastructure/remote/tree"
	"github.com/riskibarqy/starleague/internal/platform/snapshot"
)

const (
	eventPut         = "put"
	eventPatch       = "patch"
	eventKeepAlive   = "keep-alive"
	eventCancel      = "cancel"
	eventAuthRevoked = "auth_revoked"

	maxEventBytes = 8 << 20
)

// errStreamClosed ends the stream for good; any other error triggers a reconnect.
var errStreamClosed = crerr.New("firebase stream closed by server")

type streamEvent struct {
	name string
	data string
}

type eventPayload struct {
	Path string `json:"path"`
	Data any    `json:"data"`
}

type subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func (s *subscription) Close() error {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
	return nil
}

// Subscribe streams the value at path. The first event carries the full value; later events
// are applied to a local copy and fn receives the whole value after each one. A dropped stream
// reconnects after the configured delay and starts over from a full value.
func (c *Client) Subscribe(ctx context.Context, path string, fn func(snapshot.Snapshot)) (remote.Subscription, error) {
	if fn == nil {
		return nil, crerr.New("subscribe: callback is required")
	}

	streamCtx, cancel := context.WithCancel(ctx)
	sub := &subscription{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(sub.done)
		for {
			err := c.stream(streamCtx, path, fn)
			if streamCtx.Err() != nil {
				return
			}
			if crerr.Is(err, errStreamClosed) {
				c.logger.WarnContext(streamCtx, "firebase stream ended", "path", path, "error", err)
				return
			}
			c.logger.WarnContext(streamCtx, "firebase stream dropped, reconnecting",
				"path", path,
				"delay_ms", c.reconnectDelay.Milliseconds(),
				"error", err,
			)

			timer := time.NewTimer(c.reconnectDelay)
			select {
			case <-streamCtx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()
	return sub, nil
}

func (c *Client) stream(ctx context.Context, path string, fn func(snapshot.Snapshot)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path), nil)
	if err != nil {
		return crerr.Wrap(err, "build stream request")
	}
	req.Header.Set("accept", "text/event-stream")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return crerr.Wrapf(errTransient, "open stream: %s", c.sanitize(err.Error()))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := readBody(resp.Body)
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return crerr.Wrapf(errStreamClosed, "stream status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
		}
		return crerr.Newf("stream status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
	}

	local, err := tree.New(nil)
	if err != nil {
		return err
	}
	return readEvents(resp.Body, func(ev streamEvent) error {
		switch ev.name {
		case eventKeepAlive:
			return nil
		case eventCancel, eventAuthRevoked:
			return crerr.Wrapf(errStreamClosed, "event %s", ev.name)
		case eventPut, eventPatch:
			var payload eventPayload
			if err := sonic.UnmarshalString(ev.data, &payload); err != nil {
				c.logger.WarnContext(ctx, "firebase event ignored", "path", path, "event", ev.name, "error", err)
				return nil
			}
			if err := applyEvent(local, ev.name, payload); err != nil {
				return err
			}
			raw, err := local.Encode("")
			if err != nil {
				return err
			}
			if ctx.Err() == nil {
				fn(snapshot.Snapshot{Path: path, Raw: raw})
			}
			return nil
		default:
			c.logger.DebugContext(ctx, "firebase event skipped", "path", path, "event", ev.name)
			return nil
		}
	})
}

func applyEvent(local *tree.Tree, name string, payload eventPayload) error {
	if name == eventPut {
		return local.Set(payload.Path, payload.Data)
	}
	fields, ok := payload.Data.(map[string]any)
	if !ok {
		return crerr.Newf("patch at %q without object data", payload.Path)
	}
	return local.Merge(payload.Path, fields)
}

// readEvents parses a text/event-stream body and calls handle for each complete event.
func readEvents(r io.Reader, handle func(streamEvent) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxEventBytes)

	var ev streamEvent
	var data []string
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			if ev.name != "" || len(data) > 0 {
				ev.data = strings.Join(data, "\n")
				if err := handle(ev); err != nil {
					return err
				}
			}
			ev, data = streamEvent{}, data[:0]
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			ev.name = value
		case "data":
			data = append(data, value)
		}
	}
	if err := scanner.Err(); err != nil {
		return crerr.Wrapf(errTransient, "read stream: %v", err)
	}
	return crerr.Wrap(errTransient, "stream ended")
}
