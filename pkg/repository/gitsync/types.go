package gitsync

import "time"

// Config configures archive synchronization against a shared Git
// repository.
type Config struct {
	// Repository is the remote URL holding the recorded archives.
	Repository string

	// Branch is the branch to track.
	Branch string

	// Path is the subdirectory within the repository that holds the
	// archive root. Empty means the repository root.
	Path string

	// LocalPath is where the repository is cloned. Empty defaults to a
	// directory under the system temp dir.
	LocalPath string

	// Depth enables shallow clones when > 0.
	Depth int

	// Timeout bounds each remote operation. Default: 60 seconds.
	Timeout time.Duration

	// CleanOnStart removes any existing local clone before cloning.
	CleanOnStart bool

	// Auth selects how the remote is authenticated.
	Auth AuthConfig
}

// AuthConfig selects the Git authentication method.
type AuthConfig struct {
	// Type is one of "token", "ssh" or "none". Empty means "none".
	Type string

	// Token is the access token for token auth.
	Token string

	// SSHKeyPath is the private key file for ssh auth.
	SSHKeyPath string

	// SSHKeyPassphrase unlocks an encrypted key. Empty for unencrypted
	// keys.
	SSHKeyPassphrase string
}

// PullResult describes what a Pull changed.
type PullResult struct {
	// FromSHA is the commit the local clone was at before the pull.
	FromSHA string

	// ToSHA is the commit after the pull.
	ToSHA string

	// HadChanges is true when the pull moved the local clone.
	HadChanges bool

	// ChangedArchives lists the archive files (repository-relative)
	// added, modified or removed by the pull. Non-archive files are
	// not reported.
	ChangedArchives []string
}

// CommitInfo describes the commit the local clone currently points at.
type CommitInfo struct {
	SHA        string
	Author     string
	Email      string
	Timestamp  time.Time
	Message    string
	Branch     string
	Repository string
}

// SyncMetrics tracks synchronization activity.
type SyncMetrics struct {
	CloneDuration   time.Duration
	PullDuration    time.Duration
	LastPullTime    time.Time
	SuccessfulPulls int64
	FailedPulls     int64
	LastCommitSHA   string
}
