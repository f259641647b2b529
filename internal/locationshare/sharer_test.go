package locationshare

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kaan069/yolsepetigoAcenta/internal/config"
	"github.com/kaan069/yolsepetigoAcenta/internal/connection"
	"github.com/kaan069/yolsepetigoAcenta/internal/geo"
	"github.com/kaan069/yolsepetigoAcenta/internal/metrics"
)

var istanbul = geo.Position{Latitude: 41.0082, Longitude: 28.9784}

// shareServer accepts share sockets, decodes the first frame and runs reply.
type shareServer struct {
	*httptest.Server
	dials    atomic.Int32
	received chan Submission
	paths    chan string
}

func newShareServer(t *testing.T, reply func(conn *websocket.Conn)) *shareServer {
	t.Helper()

	s := &shareServer{
		received: make(chan Submission, 4),
		paths:    make(chan string, 4),
	}
	upgrader := websocket.Upgrader{}

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.dials.Add(1)
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		s.paths <- r.URL.Path

		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var sub Submission
		if err := json.Unmarshal(data, &sub); err != nil {
			t.Errorf("server could not decode submission %s: %v", data, err)
			return
		}
		s.received <- sub

		reply(conn)
	}))
	t.Cleanup(s.Close)

	return s
}

func (s *shareServer) config() config.LocationShareConfig {
	return config.LocationShareConfig{
		WSURL:              "ws" + strings.TrimPrefix(s.URL, "http") + "/ws/location-share",
		ReplyTimeout:       time.Second,
		GeolocationTimeout: time.Second,
	}
}

func writeJSON(conn *websocket.Conn, v string) {
	conn.WriteMessage(websocket.TextMessage, []byte(v))
}

func closeWith(conn *websocket.Conn, code int) {
	conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, ""), time.Now().Add(time.Second))
	// Wait for the client's close reply.
	conn.ReadMessage()
}

// waitForClose blocks until the client goes away.
func waitForClose(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func TestShare_Success(t *testing.T) {
	srv := newShareServer(t, func(conn *websocket.Conn) {
		writeJSON(conn, `{"type":"location_received"}`)
		waitForClose(conn)
	})

	s := New(srv.config(), geo.StaticLocator{Position: istanbul}, nil, metrics.New())

	pos, err := s.Share(context.Background(), "share-token")
	if err != nil {
		t.Fatalf("Share failed: %v", err)
	}
	if pos.Latitude != istanbul.Latitude || pos.Longitude != istanbul.Longitude {
		t.Errorf("position = %+v, want %+v", pos, istanbul)
	}

	if path := <-srv.paths; path != "/ws/location-share/share-token/" {
		t.Errorf("path = %q", path)
	}
	sub := <-srv.received
	want := Submission{Action: "share_location", Latitude: 41.0082, Longitude: 28.9784}
	if sub != want {
		t.Errorf("submission = %+v, want %+v", sub, want)
	}
}

func TestShare_IgnoresUnrelatedFrames(t *testing.T) {
	srv := newShareServer(t, func(conn *websocket.Conn) {
		writeJSON(conn, `garbage`)
		writeJSON(conn, `{"type":"ping"}`)
		writeJSON(conn, `{"type":"location_received"}`)
		waitForClose(conn)
	})

	s := New(srv.config(), geo.StaticLocator{Position: istanbul}, nil, nil)

	if _, err := s.Share(context.Background(), "tok"); err != nil {
		t.Fatalf("Share failed: %v", err)
	}
}

func TestShare_ReplyBeforeNormalClose(t *testing.T) {
	srv := newShareServer(t, func(conn *websocket.Conn) {
		writeJSON(conn, `{"type":"location_received"}`)
		closeWith(conn, websocket.CloseNormalClosure)
	})

	s := New(srv.config(), geo.StaticLocator{Position: istanbul}, nil, nil)

	if _, err := s.Share(context.Background(), "tok"); err != nil {
		t.Fatalf("Share failed: %v", err)
	}
}

func TestShare_Failures(t *testing.T) {
	tests := []struct {
		name  string
		reply func(conn *websocket.Conn)
		check func(t *testing.T, err error)
	}{
		{
			name: "server error with message",
			reply: func(conn *websocket.Conn) {
				writeJSON(conn, `{"type":"error","message":"Link suresi doldu"}`)
				waitForClose(conn)
			},
			check: func(t *testing.T, err error) {
				var se *ServerError
				if !errors.As(err, &se) {
					t.Fatalf("error = %v, want *ServerError", err)
				}
				if se.Message != "Link suresi doldu" {
					t.Errorf("Message = %q", se.Message)
				}
			},
		},
		{
			name: "server error without message",
			reply: func(conn *websocket.Conn) {
				writeJSON(conn, `{"type":"error"}`)
				waitForClose(conn)
			},
			check: func(t *testing.T, err error) {
				var se *ServerError
				if !errors.As(err, &se) {
					t.Fatalf("error = %v, want *ServerError", err)
				}
				if err.Error() != "server error: Hata olustu" {
					t.Errorf("Error() = %q", err.Error())
				}
			},
		},
		{
			name: "no reply",
			reply: func(conn *websocket.Conn) {
				waitForClose(conn)
			},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrTimeout) {
					t.Errorf("error = %v, want ErrTimeout", err)
				}
			},
		},
		{
			name: "normal close without reply",
			reply: func(conn *websocket.Conn) {
				closeWith(conn, websocket.CloseNormalClosure)
			},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrClosedWithoutReply) {
					t.Errorf("error = %v, want ErrClosedWithoutReply", err)
				}
			},
		},
		{
			name: "close with error code",
			reply: func(conn *websocket.Conn) {
				closeWith(conn, 4004)
			},
			check: func(t *testing.T, err error) {
				var ce *connection.CloseError
				if !errors.As(err, &ce) || ce.Code != 4004 {
					t.Errorf("error = %v, want close code 4004", err)
				}
			},
		},
		{
			name: "dropped connection",
			reply: func(conn *websocket.Conn) {
				conn.NetConn().Close()
			},
			check: func(t *testing.T, err error) {
				var ce *connection.CloseError
				if !errors.As(err, &ce) || ce.Code != connection.CloseAbnormal {
					t.Errorf("error = %v, want abnormal close", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newShareServer(t, tt.reply)
			cfg := srv.config()
			cfg.ReplyTimeout = 200 * time.Millisecond

			s := New(cfg, geo.StaticLocator{Position: istanbul}, nil, nil)

			start := time.Now()
			_, err := s.Share(context.Background(), "tok")
			if err == nil {
				t.Fatal("expected error")
			}
			tt.check(t, err)

			if elapsed := time.Since(start); elapsed > time.Second {
				t.Errorf("Share took %v, want it bounded by the reply timeout", elapsed)
			}
			if got := UserMessage(err); got != MsgSendFailed {
				t.Errorf("UserMessage = %q, want %q", got, MsgSendFailed)
			}
		})
	}
}

func TestShare_InvalidToken(t *testing.T) {
	srv := newShareServer(t, waitForClose)

	var located atomic.Bool
	locator := geo.LocatorFunc(func(ctx context.Context, opts geo.Options) (geo.Position, error) {
		located.Store(true)
		return istanbul, nil
	})

	s := New(srv.config(), locator, nil, nil)

	for _, token := range []string{"", "   "} {
		_, err := s.Share(context.Background(), token)
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Share(%q) error = %v, want ErrInvalidToken", token, err)
		}
		if got := UserMessage(err); got != MsgInvalidLink {
			t.Errorf("UserMessage = %q, want %q", got, MsgInvalidLink)
		}
	}

	if located.Load() {
		t.Error("locator must not be asked for an invalid token")
	}
	if n := srv.dials.Load(); n != 0 {
		t.Errorf("dials = %d, want 0", n)
	}
}

func TestShare_GeolocationFailures(t *testing.T) {
	tests := []struct {
		name    string
		locator geo.Locator
		kind    geo.ErrorKind
		message string
	}{
		{
			name:    "permission denied",
			locator: geo.StaticLocator{Err: geo.PermissionDenied(nil)},
			kind:    geo.KindPermissionDenied,
			message: "Konum izni reddedildi. Lutfen tarayici ayarlarindan konum iznini verin.",
		},
		{
			name:    "unavailable",
			locator: geo.StaticLocator{Err: geo.Unavailable(errors.New("no gps"))},
			kind:    geo.KindUnavailable,
			message: "Konum bilgisi alinamadi.",
		},
		{
			name:    "no locator",
			locator: nil,
			kind:    geo.KindUnavailable,
			message: "Tarayiciniz konum desteklemiyor",
		},
		{
			name: "timeout",
			locator: geo.LocatorFunc(func(ctx context.Context, opts geo.Options) (geo.Position, error) {
				<-ctx.Done()
				return geo.Position{}, ctx.Err()
			}),
			kind:    geo.KindTimeout,
			message: "Konum istegi zaman asimina ugradi.",
		},
		{
			name:    "unknown",
			locator: geo.StaticLocator{Err: errors.New("sensor exploded")},
			kind:    geo.KindUnknown,
			message: "Konum alinirken hata olustu.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newShareServer(t, waitForClose)
			cfg := srv.config()
			cfg.GeolocationTimeout = 50 * time.Millisecond

			s := New(cfg, tt.locator, nil, nil)

			_, err := s.Share(context.Background(), "tok")
			if !geo.IsKind(err, tt.kind) {
				t.Fatalf("error = %v, want kind %s", err, tt.kind)
			}
			if got := UserMessage(err); got != tt.message {
				t.Errorf("UserMessage = %q, want %q", got, tt.message)
			}
			if n := srv.dials.Load(); n != 0 {
				t.Errorf("dials = %d, want 0 after geolocation failure", n)
			}
		})
	}
}

func TestShare_GeolocationOptions(t *testing.T) {
	srv := newShareServer(t, func(conn *websocket.Conn) {
		writeJSON(conn, `{"type":"location_received"}`)
		waitForClose(conn)
	})

	var got geo.Options
	locator := geo.LocatorFunc(func(ctx context.Context, opts geo.Options) (geo.Position, error) {
		got = opts
		return istanbul, nil
	})

	cfg := srv.config()
	cfg.GeolocationTimeout = 15 * time.Second

	if _, err := New(cfg, locator, nil, nil).Share(context.Background(), "tok"); err != nil {
		t.Fatalf("Share failed: %v", err)
	}

	want := geo.Options{HighAccuracy: true, Timeout: 15 * time.Second, MaximumAge: 0}
	if got != want {
		t.Errorf("options = %+v, want %+v", got, want)
	}
}

func TestShare_ContextCanceled(t *testing.T) {
	srv := newShareServer(t, waitForClose)
	cfg := srv.config()
	cfg.ReplyTimeout = 5 * time.Second

	s := New(cfg, geo.StaticLocator{Position: istanbul}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-srv.received
		cancel()
	}()

	_, err := s.Share(ctx, "tok")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestShare_DialRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	cfg := config.LocationShareConfig{
		WSURL:        "ws" + strings.TrimPrefix(srv.URL, "http"),
		ReplyTimeout: time.Second,
	}
	s := New(cfg, geo.StaticLocator{Position: istanbul}, nil, nil)

	_, err := s.Share(context.Background(), "tok")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "status 404") {
		t.Errorf("error = %v, want status 404", err)
	}
	if got := resultLabel(err); got != "connection_error" {
		t.Errorf("resultLabel = %q, want connection_error", got)
	}
}

func TestResultLabel(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "success"},
		{ErrInvalidToken, "invalid_token"},
		{geo.PermissionDenied(nil), "geolocation_permission_denied"},
		{&ServerError{Message: "x"}, "server_error"},
		{ErrTimeout, "timeout"},
		{ErrClosedWithoutReply, "closed_without_reply"},
		{context.Canceled, "canceled"},
		{&connection.CloseError{Code: 1011}, "connection_error"},
	}

	for _, tt := range tests {
		if got := resultLabel(tt.err); got != tt.want {
			t.Errorf("resultLabel(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
