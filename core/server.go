package core

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log"

	"github.com/gliderlabs/ssh"
	gossh "golang.org/x/crypto/ssh"

	"github.com/minishell/minish/core/config"
	"github.com/minishell/minish/core/logger"
	"github.com/minishell/minish/core/ttylog"
)

// Server exposes the shell over SSH; every accepted session gets its own
// serial read-eval loop bound to the session's streams.
type Server struct {
	configuration *config.Configuration
	events        *logger.Logger
	sshServer     *ssh.Server
}

func NewServer(configuration *config.Configuration, events *logger.Logger) (*Server, error) {
	server := &Server{
		configuration: configuration,
		events:        events,
	}

	server.sshServer = &ssh.Server{
		Addr:    fmt.Sprintf(":%d", configuration.SSHPort),
		Version: configuration.SSHBanner,
		Handler: func(s ssh.Session) {
			server.HandleConnection(s)
		},
		PasswordHandler: func(ctx ssh.Context, password string) bool {
			if configuration.AllowAnyPassword {
				return true
			}
			ok := false
			for _, allowed := range configuration.GetPasswords(ctx.User()) {
				if subtle.ConstantTimeCompare([]byte(password), []byte(allowed)) == 1 {
					ok = true
				}
			}
			return ok
		},
	}

	keyPem, err := configuration.PrivateKeyPem()
	if err != nil {
		return nil, fmt.Errorf("reading host key: %w", err)
	}
	signer, err := gossh.ParsePrivateKey(keyPem)
	if err != nil {
		return nil, fmt.Errorf("parsing host key: %w", err)
	}
	server.sshServer.AddHostKey(signer)

	return server, nil
}

// HandleConnection runs one SSH session to completion.
func (s *Server) HandleConnection(sess ssh.Session) {
	pty, winch, isPty := sess.Pty()

	width := pty.Window.Width
	go func() {
		for window := range winch {
			width = window.Width
		}
	}()

	info := SessionInfo{
		Username:   sess.User(),
		RemoteAddr: sess.RemoteAddr().String(),
		Term:       pty.Term,
		IsPTY:      isPty,
		Width:      func() int { return width },
	}

	stdio := ttylog.Stdio{
		Stdin:  sess,
		Stdout: sess,
		Stderr: sess.Stderr(),
	}

	// A direct exec request runs exactly one line; there is still no
	// tokenization, so only single-token paths resolve.
	if command := sess.RawCommand(); command != "" {
		sess.Exit(RunExec(s.configuration, s.events, stdio, info, command))
		return
	}

	if err := RunSession(s.configuration, s.events, stdio, info); err != nil {
		log.Printf("session for %s: %v", info.RemoteAddr, err)
		sess.Exit(1)
		return
	}
	sess.Exit(0)
}

// ListenAndServe blocks serving SSH connections.
func (s *Server) ListenAndServe() error {
	return s.sshServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server without interrupting any
// active sessions.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.sshServer.Shutdown(ctx)
}
