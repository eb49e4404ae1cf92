package gitsync

import (
	"fmt"
	"os"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// AuthProvider yields the Git transport credentials for remote operations.
type AuthProvider interface {
	// GetAuth returns the transport authentication method, or nil for
	// anonymous access.
	GetAuth() (transport.AuthMethod, error)

	// Type names the auth method for logging.
	Type() string
}

// NewAuthProvider selects an auth provider from configuration. Supported
// types: "token", "ssh", "none" (the default).
func NewAuthProvider(cfg AuthConfig) (AuthProvider, error) {
	switch cfg.Type {
	case "token":
		if cfg.Token == "" {
			return nil, fmt.Errorf("token auth requires non-empty token")
		}
		return &tokenAuth{token: cfg.Token}, nil

	case "ssh":
		if cfg.SSHKeyPath == "" {
			return nil, fmt.Errorf("ssh auth requires ssh_key_path")
		}
		return &sshAuth{keyPath: cfg.SSHKeyPath, passphrase: cfg.SSHKeyPassphrase}, nil

	case "none", "":
		return &noAuth{}, nil

	default:
		return nil, fmt.Errorf("unknown auth type: %s", cfg.Type)
	}
}

// tokenAuth is HTTPS access-token authentication (GitHub PATs, GitLab and
// Bitbucket tokens).
type tokenAuth struct {
	token string
}

// GetAuth returns HTTP basic auth carrying the token. The username is
// ignored by the common providers.
func (a *tokenAuth) GetAuth() (transport.AuthMethod, error) {
	if a.token == "" {
		return nil, fmt.Errorf("token cannot be empty")
	}
	return &http.BasicAuth{Username: "git", Password: a.token}, nil
}

func (a *tokenAuth) Type() string { return "token" }

// sshAuth is public-key authentication from a private key file.
type sshAuth struct {
	keyPath    string
	passphrase string
}

// GetAuth loads the private key. The key file must exist and must not be
// group or world accessible.
func (a *sshAuth) GetAuth() (transport.AuthMethod, error) {
	info, err := os.Stat(a.keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to access SSH key file: %w", err)
	}
	if mode := info.Mode().Perm(); mode&0o077 != 0 {
		return nil, fmt.Errorf("SSH key file permissions too open (%o), should be 0600", mode)
	}

	auth, err := ssh.NewPublicKeysFromFile("git", a.keyPath, a.passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to load SSH key: %w", err)
	}
	return auth, nil
}

func (a *sshAuth) Type() string { return "ssh" }

// noAuth is anonymous access for public repositories.
type noAuth struct{}

func (a *noAuth) GetAuth() (transport.AuthMethod, error) { return nil, nil }

func (a *noAuth) Type() string { return "none" }
