package xhttp

import (
	"time"

	"github.com/nimasrn/ledger-reconciler/pkg/logger"
	"github.com/valyala/fasthttp"
)

type Middleware func(next RequestHandler) RequestHandler

// Server is a thin wrapper around fasthttp.Server that owns a router and a
// middleware chain applied outermost-first.
type Server struct {
	Server      *fasthttp.Server
	Router      *Router
	middlewares []Middleware
}

type ServerOption struct {
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	MaxRequestBodySize int
	Concurrency        int
}

var DefaultServerOption = ServerOption{
	ReadTimeout:        time.Millisecond * 2500,
	WriteTimeout:       time.Millisecond * 2500,
	IdleTimeout:        time.Second * 10,
	MaxRequestBodySize: 4 * 1024 * 1024,
	Concurrency:        30_000,
}

func NewServer(opt ServerOption) *Server {
	s := &fasthttp.Server{
		ReadTimeout:           opt.ReadTimeout,
		WriteTimeout:          opt.WriteTimeout,
		IdleTimeout:           opt.IdleTimeout,
		MaxRequestBodySize:    opt.MaxRequestBodySize,
		Concurrency:           opt.Concurrency,
		NoDefaultServerHeader: true,
		NoDefaultContentType:  true,
		CloseOnShutdown:       true,
		Logger:                logger.GetLogger(),
	}
	return &Server{
		Server: s,
		Router: CreateDefaultRouter(),
	}
}

// Use appends a middleware. Must be called before ListenAndServe.
func (s *Server) Use(m Middleware) {
	s.middlewares = append(s.middlewares, m)
}

func (s *Server) ListenAndServe(addr string) error {
	h := s.Router.Handler
	for i := len(s.middlewares) - 1; i >= 0; i-- {
		h = s.middlewares[i](h)
	}
	s.Server.Handler = h
	logger.Info("[http] listening", "addr", addr)
	return s.Server.ListenAndServe(addr)
}

func (s *Server) Shutdown() {
	if err := s.Server.Shutdown(); err != nil {
		logger.Error("[http] shutdown error", "error", err)
	}
}
