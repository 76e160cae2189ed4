package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"workshop-backend/pkg/config"
)

var ProvideHTTPServer = fx.Module("http.server",
	fx.Provide(NewHttpServer),
	fx.Invoke(Run),
)

type Server struct {
	server *http.Server

	mu       sync.RWMutex
	cert     *tls.Certificate
	certPath string
	keyPath  string

	listener net.Listener
	watcher  *fsnotify.Watcher
}

type Params struct {
	fx.In
	Config  *config.Config
	Handler *gin.Engine
}

func NewHttpServer(p Params) (*Server, error) {
	cfg := p.Config
	srv := &Server{
		server: &http.Server{
			Addr:         NormalizeAddr(cfg.Server.Addr),
			Handler:      p.Handler,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}

	if cfg.TLS.Enable {
		srv.certPath = cfg.TLS.CertPath
		srv.keyPath = cfg.TLS.KeyPath
		if err := srv.reloadCert(); err != nil {
			return nil, err
		}
		srv.server.TLSConfig = &tls.Config{
			MinVersion:     tls.VersionTLS12,
			GetCertificate: srv.certificate,
		}
	}

	return srv, nil
}

// NormalizeAddr accepts either a bare port or a host:port listen address.
func NormalizeAddr(addr string) string {
	switch {
	case addr == "":
		return ":0"
	case strings.Contains(addr, ":"):
		return addr
	default:
		return ":" + addr
	}
}

// Addr reports the bound address once the server is listening, else the configured one.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.server.Addr
}

func (s *Server) certificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cert == nil {
		return nil, errors.New("no TLS certificate loaded")
	}
	return s.cert, nil
}

func (s *Server) reloadCert() error {
	cert, err := tls.LoadX509KeyPair(s.certPath, s.keyPath)
	if err != nil {
		zap.L().Error("[HTTP] failed to load TLS certificate", zap.String("cert", s.certPath), zap.Error(err))
		return err
	}
	s.mu.Lock()
	s.cert = &cert
	s.mu.Unlock()
	zap.L().Info("[HTTP] TLS certificate loaded", zap.String("cert", s.certPath))
	return nil
}

// watchCertificates follows the directories holding the key pair, so a secret
// mount that swaps files through a rename still triggers a reload.
func (s *Server) watchCertificates() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create certificate watcher: %w", err)
	}

	dirs := map[string]bool{filepath.Dir(s.certPath): true, filepath.Dir(s.keyPath): true}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	s.watcher = watcher

	watched := map[string]bool{filepath.Clean(s.certPath): true, filepath.Clean(s.keyPath): true}
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !watched[filepath.Clean(event.Name)] && !event.Has(fsnotify.Create) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					_ = s.reloadCert()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				zap.L().Warn("[HTTP] certificate watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}

// Start binds the listener before returning, so a taken port fails startup.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.server.Addr, err)
	}
	s.listener = ln

	if s.server.TLSConfig != nil {
		if err := s.watchCertificates(); err != nil {
			zap.L().Warn("[HTTP] TLS hot reload disabled", zap.Error(err))
		}
		ln = tls.NewListener(ln, s.server.TLSConfig)
	}

	zap.L().Info("[HTTP] Starting HTTP server",
		zap.String("addr", s.Addr()),
		zap.Bool("tls", s.server.TLSConfig != nil),
	)

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Error("[HTTP] server stopped unexpectedly", zap.Error(err))
		}
	}()
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	zap.L().Info("[HTTP] Shutting down HTTP server gracefully...")
	if s.watcher != nil {
		_ = s.watcher.Close()
	}
	return s.server.Shutdown(ctx)
}

func Run(lc fx.Lifecycle, srv *Server) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error { return srv.Start() },
		OnStop:  srv.Stop,
	})
}
