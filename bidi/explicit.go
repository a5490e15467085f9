package bidi

// overrideStatus tracks X1-X8's directional override state for one entry
// of the explicit-level stack.
type overrideStatus int

const (
	overrideNeutral overrideStatus = iota
	overrideL
	overrideR
)

type stackEntry struct {
	level    Level
	override overrideStatus
	isolate  bool
}

// explicitState carries the X1-X9 stack plus overflow/valid counters across
// one paragraph, along with the output levels[] array and (in place)
// direction-class rewrites performed by directional overrides.
type explicitState struct {
	dp     *dirProps
	levels []Level

	stack                  []stackEntry
	overflowIsolateCount   int
	overflowEmbeddingCount int
	validIsolateCount      int
}

// nextEven/nextOdd compute the smallest even/odd level greater than cur,
// per X2-X5's "least greater even/odd level" rule.
func nextEven(cur Level) Level {
	if cur%2 == 0 {
		return cur + 2
	}
	return cur + 1
}

func nextOdd(cur Level) Level {
	if cur%2 == 0 {
		return cur + 1
	}
	return cur + 2
}

// resolveExplicit runs X1-X8 over one paragraph range [start, limit),
// writing levels into st.levels[start:limit] and applying directional
// overrides in place to st.dp.classes. It returns nothing: the top-level
// para embedding level was already decided by the caller (P2/P3) and is
// seeded as the stack's initial entry.
func resolveExplicit(dp *dirProps, levels []Level, start, limit int, paraLevel Level) {
	st := &explicitState{dp: dp, levels: levels}
	st.stack = make([]stackEntry, 0, MaxDepth)
	st.stack = append(st.stack, stackEntry{level: paraLevel})

	top := func() stackEntry { return st.stack[len(st.stack)-1] }
	push := func(e stackEntry) { st.stack = append(st.stack, e) }
	pop := func() {
		if len(st.stack) > 1 {
			st.stack = st.stack[:len(st.stack)-1]
		}
	}

	applyOverride := func(i int) {
		switch top().override {
		case overrideL:
			dp.classes[i] = classL
		case overrideR:
			dp.classes[i] = classR
		}
	}

	for i := start; i < limit; {
		if !dp.runeStart[i] {
			i++
			continue
		}
		c := dp.classes[i]
		switch c {
		case classRLE, classLRE, classRLO, classLRO:
			levels[i] = top().level
			var newLevel Level
			ov := overrideNeutral
			if c == classRLE || c == classRLO {
				newLevel = nextOdd(top().level)
			} else {
				newLevel = nextEven(top().level)
			}
			if c == classRLO {
				ov = overrideR
			} else if c == classLRO {
				ov = overrideL
			}
			if newLevel <= MaxExplicitLevel && st.overflowIsolateCount == 0 && st.overflowEmbeddingCount == 0 {
				push(stackEntry{level: newLevel, override: ov})
			} else if st.overflowIsolateCount == 0 {
				st.overflowEmbeddingCount++
			}
		case classRLI, classLRI, classFSI:
			levels[i] = top().level
			applyOverride(i)
			var newLevel Level
			if c == classRLI {
				newLevel = nextOdd(top().level)
			} else {
				newLevel = nextEven(top().level)
			}
			if newLevel <= MaxExplicitLevel && st.overflowIsolateCount == 0 && st.overflowEmbeddingCount == 0 {
				st.validIsolateCount++
				push(stackEntry{level: newLevel, isolate: true})
			} else {
				st.overflowIsolateCount++
			}
		case classPDI:
			if st.overflowIsolateCount > 0 {
				st.overflowIsolateCount--
			} else if st.validIsolateCount > 0 {
				st.overflowEmbeddingCount = 0
				for !top().isolate {
					pop()
				}
				pop()
				st.validIsolateCount--
			}
			levels[i] = top().level
			applyOverride(i)
		case classPDF:
			if st.overflowIsolateCount > 0 {
				// no-op: PDF inside an overflow isolate is itself overflow
			} else if st.overflowEmbeddingCount > 0 {
				st.overflowEmbeddingCount--
			} else if !top().isolate && len(st.stack) > 1 {
				pop()
			}
			levels[i] = top().level
		case classB:
			st.stack = st.stack[:1]
			st.overflowIsolateCount, st.overflowEmbeddingCount, st.validIsolateCount = 0, 0, 0
			levels[i] = paraLevel
		default:
			levels[i] = top().level
			applyOverride(i)
		}
		i = nextRuneStart(dp, i)
	}
	// BN and the explicit-formatting characters themselves keep the level
	// assigned above (the level "in place", per X9's modern successor
	// retain-don't-remove treatment); continuation bytes mirror their lead
	// byte's level so later byte-indexed consumers need no special case.
	for i := start; i < limit; i++ {
		if !dp.runeStart[i] {
			levels[i] = levels[prevRuneStart(dp, i)]
		}
	}
}

func prevRuneStart(dp *dirProps, i int) int {
	for i > 0 && !dp.runeStart[i] {
		i--
	}
	return i
}
