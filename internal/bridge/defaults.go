// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package bridge

import (
	"bytes"
	"container/list"
	"strings"
	"sync"
	"time"
)

// Classes every process can reach through the default tier.
func init() {
	listClass := ClassFor[list.List]()
	listClass.New = list.New

	timeClass := ClassFor[time.Time]()
	timeClass.Statics = map[string]any{"Now": time.Now}

	defaultRegistry.MustRegister(
		listClass,
		ClassFor[strings.Builder](),
		ClassFor[bytes.Buffer](),
		ClassFor[sync.WaitGroup](),
		timeClass,
	)
}
