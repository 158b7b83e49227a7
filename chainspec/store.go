// Copyright (c) 2021 IoTeX Foundation
// This is an alpha (internal) release and is not suitable for production. This source code is provided 'as is' and no
// warranties are given as to title or non-infringement, merchantability or fitness for purpose and, to the extent
// permitted by law, all liability for your use of the code is disclaimed. This source code is governed by Apache
// License 2.0 that can be found in the LICENSE file.

package chainspec

import (
	"context"
	"encoding/hex"

	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/labornetwork/labor-node/db"
	"github.com/labornetwork/labor-node/pkg/compress"
	"github.com/labornetwork/labor-node/pkg/lifecycle"
	"github.com/labornetwork/labor-node/pkg/log"
)

const (
	_specNS = "chainSpec"
	_hashNS = "genesisHash"
)

// ErrHashMismatch indicates a stored spec whose genesis no longer hashes to the recorded value
var ErrHashMismatch = errors.New("genesis hash mismatch")

// Store persists compressed chain specs and their genesis hash by chain id
type Store struct {
	lifecycle.Readiness
	kv         db.KVStore
	compressor string
}

// NewStore creates a store over the kv store
func NewStore(kv db.KVStore, compressor string) (*Store, error) {
	if !compress.Supported(compressor) {
		return nil, errors.Errorf("unsupported compressor %s", compressor)
	}
	return &Store{
		kv:         kv,
		compressor: compressor,
	}, nil
}

// Start starts the underlying kv store
func (s *Store) Start(ctx context.Context) error {
	if err := s.kv.Start(ctx); err != nil {
		return err
	}
	return s.TurnOn()
}

// Stop stops the underlying kv store
func (s *Store) Stop(ctx context.Context) error {
	if err := s.TurnOff(); err != nil {
		return err
	}
	return s.kv.Stop(ctx)
}

// Put saves the spec under its id, overwriting a previous one
func (s *Store) Put(spec *Spec) error {
	if !s.IsReady() {
		return lifecycle.ErrWrongState
	}
	b, err := spec.JSON()
	if err != nil {
		return err
	}
	v, err := compress.Compress(b, s.compressor)
	if err != nil {
		return errors.Wrapf(err, "failed to compress chain spec %s", spec.ID)
	}
	h := spec.Hash()
	if err := s.kv.Put(_specNS, []byte(spec.ID), v); err != nil {
		return err
	}
	if err := s.kv.Put(_hashNS, []byte(spec.ID), h[:]); err != nil {
		return err
	}
	log.Logger("chainspec").Info("Stored chain spec",
		zap.String("chain", spec.ID),
		zap.Int("size", len(b)),
		zap.Int("compressed", len(v)),
		zap.String("hash", hex.EncodeToString(h[:])))
	return nil
}

// Get loads the spec of the chain and checks its genesis hash
func (s *Store) Get(id string) (*Spec, error) {
	if !s.IsReady() {
		return nil, lifecycle.ErrWrongState
	}
	v, err := s.kv.Get(_specNS, []byte(id))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get chain spec %s", id)
	}
	b, err := compress.Decompress(v, s.compressor)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decompress chain spec %s", id)
	}
	spec, err := FromJSON(b)
	if err != nil {
		return nil, err
	}
	expected, err := s.GenesisHash(id)
	if err != nil {
		return nil, err
	}
	if spec.Hash() != expected {
		return nil, errors.Wrapf(ErrHashMismatch, "chain spec %s", id)
	}
	return spec, nil
}

// GenesisHash returns the recorded genesis hash of the chain
func (s *Store) GenesisHash(id string) (hash.Hash256, error) {
	if !s.IsReady() {
		return hash.ZeroHash256, lifecycle.ErrWrongState
	}
	v, err := s.kv.Get(_hashNS, []byte(id))
	if err != nil {
		return hash.ZeroHash256, errors.Wrapf(err, "failed to get genesis hash of %s", id)
	}
	return hash.BytesToHash256(v), nil
}

// List returns the ids of the stored specs
func (s *Store) List() ([]string, error) {
	if !s.IsReady() {
		return nil, lifecycle.ErrWrongState
	}
	keys, err := s.kv.GetKeyByPrefix(_specNS, nil)
	if errors.Cause(err) == db.ErrNotExist {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, string(k))
	}
	return ids, nil
}

// Delete removes the spec of the chain
func (s *Store) Delete(id string) error {
	if !s.IsReady() {
		return lifecycle.ErrWrongState
	}
	if err := s.kv.Delete(_specNS, []byte(id)); err != nil {
		return err
	}
	return s.kv.Delete(_hashNS, []byte(id))
}
