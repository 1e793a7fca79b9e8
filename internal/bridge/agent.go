package bridge

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/webgl-serve/internal/mime"
	"github.com/ziadkadry99/webgl-serve/internal/store"
)

// Agent connects to a Hub and answers its file requests from a local store.
type Agent struct {
	Store  store.Store
	Name   string
	Secret string
	Logger *slog.Logger
	// Dialer defaults to websocket.DefaultDialer.
	Dialer *websocket.Dialer
}

func (a *Agent) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}

// Run connects to url, registers and serves requests until ctx is done or
// the connection drops. It returns nil when ctx ends the session.
func (a *Agent) Run(ctx context.Context, url string) error {
	dialer := a.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	header := http.Header{}
	if a.Secret != "" {
		header.Set("Authorization", "Bearer "+a.Secret)
	}

	conn, resp, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dialing %s: %w (status %d)", url, err, resp.StatusCode)
		}
		return fmt.Errorf("dialing %s: %w", url, err)
	}
	defer conn.Close()

	var writeMu sync.Mutex
	send := func(m Message) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(m)
	}

	if err := send(Message{Action: ActionRegister, Name: a.Name}); err != nil {
		return fmt.Errorf("registering: %w", err)
	}
	a.logger().Info("bridge agent connected", slog.String("url", url), slog.String("name", a.Name))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		conn.Close()
		return nil
	})
	g.Go(func() error {
		for {
			var m Message
			if err := conn.ReadJSON(&m); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("reading from hub: %w", err)
			}
			if m.Action != ActionGetFile {
				continue
			}
			g.Go(func() error {
				if err := send(a.answer(gctx, m)); err != nil {
					a.logger().Warn("bridge: sending response", slog.String("file", m.FilePath), slog.Any("err", err))
				}
				return nil
			})
		}
	})

	err = g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// Serve runs the agent and reconnects after retry whenever the connection
// drops, until ctx is done.
func (a *Agent) Serve(ctx context.Context, url string, retry time.Duration) error {
	for {
		err := a.Run(ctx, url)
		if ctx.Err() != nil {
			return nil
		}
		a.logger().Warn("bridge agent disconnected, retrying", slog.Any("err", err), slog.Duration("retry", retry))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(retry):
		}
	}
}

func (a *Agent) answer(ctx context.Context, req Message) Message {
	resp := Message{Response: true, ID: req.ID, FilePath: req.FilePath}

	f, err := a.Store.Get(ctx, req.FilePath)
	if err == nil {
		var data []byte
		data, err = store.Decode(f)
		if err == nil {
			resp.Success = true
			resp.ContentType = f.ContentType
			if resp.ContentType == "" {
				resp.ContentType = mime.Resolve(req.FilePath)
			}
			resp.IsText = f.IsText
			if f.IsText {
				resp.Content = string(data)
			} else {
				resp.Content = base64.StdEncoding.EncodeToString(data)
			}
			return resp
		}
	}

	if errors.Is(err, store.ErrNotFound) {
		a.logger().Warn("bridge: file not found", slog.String("file", req.FilePath))
	} else {
		a.logger().Error("bridge: reading file", slog.String("file", req.FilePath), slog.Any("err", err))
	}
	resp.Error = err.Error()
	return resp
}
