/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package sizing

import (
	"context"
	"time"
)

// DefaultDebounce is the recompute coalescing window
const DefaultDebounce = 500 * time.Millisecond

// Scheduler drives the affordability engine on a debounce cadence. Each
// tick computes against the latest input snapshot, so a burst of input
// changes inside one window collapses into a single recomputation, and
// results identical to the previous publication are suppressed.
type Scheduler struct {
	engine   *Engine
	source   func() Inputs
	publish  func(Result)
	interval time.Duration
	last     *Result
}

// NewScheduler creates a scheduler. source must return the current input
// snapshot; publish receives each materially new result.
func NewScheduler(engine *Engine, source func() Inputs, publish func(Result), interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultDebounce
	}
	return &Scheduler{
		engine:   engine,
		source:   source,
		publish:  publish,
		interval: interval,
	}
}

// Run recomputes on the debounce cadence until ctx is done
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick runs one recomputation and publishes the result if it changed
func (s *Scheduler) Tick() {
	result := s.engine.Check(s.source())

	if s.last != nil && s.last.Equal(result) {
		return
	}

	s.last = &result
	s.publish(result)
}
