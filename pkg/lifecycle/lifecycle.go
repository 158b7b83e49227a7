// Copyright (c) 2021 IoTeX Foundation
// This is an alpha (internal) release and is not suitable for production. This source code is provided 'as is' and no
// warranties are given as to title or non-infringement, merchantability or fitness for purpose and, to the extent
// permitted by law, all liability for your use of the code is disclaimed. This source code is governed by Apache
// License 2.0 that can be found in the LICENSE file.

// Package lifecycle starts and stops the stateful components of the tools in order.
package lifecycle

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"
)

const (
	_notReady = 0
	_ready    = 1
)

// ErrWrongState indicates a component used before it is started or after it is stopped
var ErrWrongState = errors.New("component is in wrong state")

type (
	// Starter is a component opened before use
	Starter interface {
		Start(context.Context) error
	}

	// Stopper is a component closed after use
	Stopper interface {
		Stop(context.Context) error
	}

	// StartStopper is both a Starter and a Stopper
	StartStopper interface {
		Starter
		Stopper
	}

	// Lifecycle starts its models in order and stops them in reverse order
	Lifecycle struct {
		models []StartStopper
	}

	// Readiness is a thread-safe flag telling whether a component is started
	Readiness struct {
		ready int32
	}
)

// Add adds a model into the lifecycle
func (lc *Lifecycle) Add(m StartStopper) { lc.models = append(lc.models, m) }

// AddModels adds multiple models into the lifecycle
func (lc *Lifecycle) AddModels(m ...StartStopper) { lc.models = append(lc.models, m...) }

// OnStart starts all the models, stopping at the first failure
func (lc *Lifecycle) OnStart(ctx context.Context) error {
	for _, m := range lc.models {
		if err := m.Start(ctx); err != nil {
			return err
		}
	}
	return nil
}

// OnStop stops all the models in reverse order and returns the last failure
func (lc *Lifecycle) OnStop(ctx context.Context) error {
	var err error
	for i := len(lc.models) - 1; i >= 0; i-- {
		if e := lc.models[i].Stop(ctx); e != nil {
			err = e
		}
	}
	return err
}

// TurnOn marks the component started
func (r *Readiness) TurnOn() error {
	if atomic.CompareAndSwapInt32(&r.ready, _notReady, _ready) {
		return nil
	}
	return ErrWrongState
}

// TurnOff marks the component stopped
func (r *Readiness) TurnOff() error {
	if atomic.CompareAndSwapInt32(&r.ready, _ready, _notReady) {
		return nil
	}
	return ErrWrongState
}

// IsReady returns whether the component is started
func (r *Readiness) IsReady() bool {
	return atomic.LoadInt32(&r.ready) == _ready
}
