package main

import (
	"fmt"
	"os"
	"time"

	"github.com/cuemby/kvs/pkg/crypto"
	"github.com/cuemby/kvs/pkg/document"
	"github.com/cuemby/kvs/pkg/kvs"
	"github.com/cuemby/kvs/pkg/pathprovider"
	"github.com/cuemby/kvs/pkg/registry"
	"github.com/cuemby/kvs/pkg/storage"
	"github.com/cuemby/kvs/pkg/ttl"
	"github.com/spf13/cobra"
)

// resolveEncryptor builds the Encryptor every open*Store helper below uses,
// from the --encrypt/--passphrase flags and the config's passphrase_env
// fallback. Returns (encryptor, encrypted-flag-for-schema-metadata, error).
func resolveEncryptor(cmd *cobra.Command) (crypto.Encryptor, bool, error) {
	encrypt, _ := cmd.Flags().GetBool("encrypt")
	if !encrypt {
		return crypto.NewPassthrough(), false, nil
	}

	passphrase, _ := cmd.Flags().GetString("passphrase")
	if passphrase == "" {
		passphrase = os.Getenv(cfg.PassphraseEnv)
	}
	if passphrase == "" {
		return nil, false, fmt.Errorf("--encrypt requires --passphrase or $%s to be set", cfg.PassphraseEnv)
	}

	enc, err := crypto.NewAESGCMEncryptorFromPassphrase(passphrase)
	if err != nil {
		return nil, false, err
	}
	return enc, true, nil
}

func provider(cmd *cobra.Command) (pathprovider.Provider, error) {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	if dataDir == "" {
		dataDir = cfg.DataDir
	}
	return pathprovider.Default(dataDir)
}

// openPreferenceStore resolves name to "<base-dir>/<name>.preferences_pb".
func openPreferenceStore(cmd *cobra.Command, name string) (*kvs.PreferenceStore, error) {
	p, err := provider(cmd)
	if err != nil {
		return nil, err
	}
	path, err := p.Path(name)
	if err != nil {
		return nil, err
	}
	enc, _, err := resolveEncryptor(cmd)
	if err != nil {
		return nil, err
	}

	cell, err := registry.GetOrCreate[map[string]string](path, func() (*storage.PersistentCell[map[string]string], error) {
		return storage.NewPersistentCell[map[string]string](path, name, storage.NewStringMapCodec(), enc), nil
	})
	if err != nil {
		return nil, err
	}
	return kvs.NewPreferenceStore(cell, name), nil
}

// openTtlEngine resolves name to "<base-dir>/<name>.ttl.preferences_pb", distinct from the
// plain preference file for the same name, since the two hold values of
// different types and the registry rejects reusing a path across types.
func openTtlEngine(cmd *cobra.Command, name string) (*ttl.Engine, error) {
	p, err := provider(cmd)
	if err != nil {
		return nil, err
	}
	path, err := p.Path(name + ".ttl")
	if err != nil {
		return nil, err
	}
	enc, encrypted, err := resolveEncryptor(cmd)
	if err != nil {
		return nil, err
	}

	defaultTTL, err := cfg.ParseDefaultTTL()
	if err != nil {
		return nil, err
	}
	manager := ttl.NewManager(defaultTTL)

	cell, err := registry.GetOrCreate[map[string]ttl.Entry](path, func() (*storage.PersistentCell[map[string]ttl.Entry], error) {
		return storage.NewPersistentCell[map[string]ttl.Entry](path, name, storage.NewTtlMapCodec[ttl.Entry](), enc), nil
	})
	if err != nil {
		return nil, err
	}
	return ttl.NewEngine(cell, name, manager, encrypted), nil
}

// openDocumentStore resolves name to "<base-dir>/<name>.doc.preferences_pb", for the same
// reason openTtlEngine namespaces its own suffix.
func openDocumentStore(cmd *cobra.Command, name string) (*document.Store, error) {
	p, err := provider(cmd)
	if err != nil {
		return nil, err
	}
	path, err := p.Path(name + ".doc")
	if err != nil {
		return nil, err
	}
	enc, _, err := resolveEncryptor(cmd)
	if err != nil {
		return nil, err
	}

	cell, err := registry.GetOrCreate[string](path, func() (*storage.PersistentCell[string], error) {
		return storage.NewPersistentCell[string](path, name, storage.NewStringCodec(), enc), nil
	})
	if err != nil {
		return nil, err
	}
	return document.NewStoreFromCell(cell), nil
}

func parseTTLFlag(cmd *cobra.Command) (*time.Duration, error) {
	s, _ := cmd.Flags().GetString("ttl")
	if s == "" {
		return nil, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return nil, fmt.Errorf("invalid --ttl %q: %w", s, err)
	}
	return &d, nil
}
