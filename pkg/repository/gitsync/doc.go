// Package gitsync shares recorded archives through a Git repository.
//
// The workflow it supports: interactions are recorded on a development
// machine, the resulting archives are committed to a shared repository, and
// replay environments (CI in particular) keep a local clone current with
// Clone and Pull. ArchiveDir points a FileRepository at the synced tree:
//
//	syncer, err := gitsync.NewSyncer(gitsync.Config{
//	    Repository: "https://github.com/acme/recordings.git",
//	    Branch:     "main",
//	    Path:       "archives",
//	    Auth:       gitsync.AuthConfig{Type: "token", Token: token},
//	}, nil)
//	if err != nil {
//	    return err
//	}
//	if err := syncer.Clone(ctx); err != nil {
//	    return err
//	}
//
//	cfg := repository.DefaultFileConfig()
//	cfg.Root = syncer.ArchiveDir()
//	repo := repository.NewFileRepository(cfg, nil)
//
// Pull reports which archive files each update touched, so long-running
// replay processes can invalidate just the affected interactions.
package gitsync
