package runninglock

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/creachadair/mds/mapset"
	"github.com/powerpolicy/powermgr-go/pkg/remote"
)

type procKey struct {
	pid int32
	uid int32
}

func (k procKey) String() string { return fmt.Sprintf("%d_%d", k.pid, k.uid) }

func compareProcKey(a, b procKey) int {
	if c := cmp.Compare(a.pid, b.pid); c != 0 {
		return c
	}
	return cmp.Compare(a.uid, b.uid)
}

// Proxy tracks which tokens have their locks suppressed.
//
// A token is proxied when its process (pid, uid) has a positive proxy
// depth, or when it declares work sources and every work-source uid has a
// positive depth. Depths are counts, so balanced Increase and Decrease
// calls always return to the previous result. Proxy is guarded by the
// manager lock.
type Proxy struct {
	depth    map[procKey]int
	uidDepth map[int32]int
	procs    map[procKey]mapset.Set[*remote.Token]
	keys     map[*remote.Token]procKey
	sources  map[*remote.Token]map[int32]string
}

// NewProxy creates an empty proxy table.
func NewProxy() *Proxy {
	return &Proxy{
		depth:    make(map[procKey]int),
		uidDepth: make(map[int32]int),
		procs:    make(map[procKey]mapset.Set[*remote.Token]),
		keys:     make(map[*remote.Token]procKey),
		sources:  make(map[*remote.Token]map[int32]string),
	}
}

// Add tracks tok as owned by (pid, uid). Adding a tracked token again has
// no effect.
func (p *Proxy) Add(tok *remote.Token, pid, uid int32) {
	if _, ok := p.keys[tok]; ok {
		return
	}
	key := procKey{pid, uid}
	set, ok := p.procs[key]
	if !ok {
		set = mapset.New[*remote.Token]()
		p.procs[key] = set
	}
	set.Add(tok)
	p.keys[tok] = key
}

// Remove stops tracking tok.
func (p *Proxy) Remove(tok *remote.Token) {
	key, ok := p.keys[tok]
	if !ok {
		return
	}
	delete(p.keys, tok)
	delete(p.sources, tok)
	if set := p.procs[key]; set != nil {
		delete(set, tok)
		if len(set) == 0 {
			delete(p.procs, key)
		}
	}
}

// Tracked reports whether tok is in the table.
func (p *Proxy) Tracked(tok *remote.Token) bool {
	_, ok := p.keys[tok]
	return ok
}

// SetWorkSources replaces the work sources (uid to bundle name) of tok.
// It reports false when tok is not tracked.
func (p *Proxy) SetWorkSources(tok *remote.Token, sources map[int32]string) bool {
	if !p.Tracked(tok) {
		return false
	}
	if len(sources) == 0 {
		delete(p.sources, tok)
		return true
	}
	p.sources[tok] = maps.Clone(sources)
	return true
}

// Increase raises the proxy depth of the process and of its uid as a
// work source.
func (p *Proxy) Increase(pid, uid int32) {
	p.depth[procKey{pid, uid}]++
	p.uidDepth[uid]++
}

// Decrease lowers the depths raised by Increase. It reports false when
// the process was not proxied.
func (p *Proxy) Decrease(pid, uid int32) bool {
	key := procKey{pid, uid}
	if p.depth[key] == 0 {
		return false
	}
	if p.depth[key]--; p.depth[key] == 0 {
		delete(p.depth, key)
	}
	if p.uidDepth[uid]--; p.uidDepth[uid] <= 0 {
		delete(p.uidDepth, uid)
	}
	return true
}

// Depth returns the proxy depth of (pid, uid).
func (p *Proxy) Depth(pid, uid int32) int {
	return p.depth[procKey{pid, uid}]
}

// Reset drops every proxy depth. Tokens and work sources are kept.
func (p *Proxy) Reset() {
	clear(p.depth)
	clear(p.uidDepth)
}

// Clear empties the table.
func (p *Proxy) Clear() {
	p.Reset()
	clear(p.procs)
	clear(p.keys)
	clear(p.sources)
}

// IsProxied reports whether the locks of tok are suppressed.
func (p *Proxy) IsProxied(tok *remote.Token) bool {
	key, ok := p.keys[tok]
	if !ok {
		return false
	}
	if p.depth[key] > 0 {
		return true
	}
	sources := p.sources[tok]
	if len(sources) == 0 {
		return false
	}
	for uid := range sources {
		if p.uidDepth[uid] == 0 {
			return false
		}
	}
	return true
}

// proxiedSources counts the work sources of tok whose uid is proxied.
func (p *Proxy) proxiedSources(tok *remote.Token) int {
	n := 0
	for uid := range p.sources[tok] {
		if p.uidDepth[uid] > 0 {
			n++
		}
	}
	return n
}

// BundleNames joins the bundle names of the unproxied work sources of
// tok, ordered by uid. It returns "" when tok has no work sources.
func (p *Proxy) BundleNames(tok *remote.Token) string {
	sources := p.sources[tok]
	var names []string
	for _, uid := range slices.Sorted(maps.Keys(sources)) {
		if p.uidDepth[uid] == 0 {
			names = append(names, sources[uid])
		}
	}
	return strings.Join(names, " ")
}

// Tokens returns every tracked token.
func (p *Proxy) Tokens() []*remote.Token {
	return slices.Collect(maps.Keys(p.keys))
}

// Dump renders the table, one process per block, ordered by (pid, uid).
func (p *Proxy) Dump() string {
	var b strings.Builder
	keys := slices.SortedFunc(maps.Keys(p.procs), compareProcKey)
	for i, key := range keys {
		set := p.procs[key]
		fmt.Fprintf(&b, "  ProcessIndex=%d pid_uid=%s depth=%d lock_cnt=%d\n", i+1, key, p.depth[key], len(set))
		toks := slices.SortedFunc(maps.Keys(set), func(a, b *remote.Token) int {
			return strings.Compare(a.String(), b.String())
		})
		for j, tok := range toks {
			sources := p.sources[tok]
			fmt.Fprintf(&b, "****lockIndex=%d****workSourceSize=%d****proxyCount=%d\n",
				j+1, len(sources), p.proxiedSources(tok))
			for k, uid := range slices.Sorted(maps.Keys(sources)) {
				state := 0
				if p.uidDepth[uid] > 0 {
					state = 1
				}
				fmt.Fprintf(&b, "********workSourceIndex=%d********appuid=%d********bundleName=%s********proxyState=%d\n",
					k+1, uid, sources[uid], state)
			}
		}
	}
	return b.String()
}
