package slash

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/keshon/slashbridge/pkg/cmd"
)

// Endpoint is the scope a descriptor set is published to, as a path suffix
// after the application ID.
type Endpoint string

// Global is the application-wide scope.
const Global Endpoint = ""

// Guild is the scope of a single guild.
func Guild(id string) Endpoint { return Endpoint("/guilds/" + id) }

func (e Endpoint) String() string {
	if e == Global {
		return "global"
	}
	return strings.TrimPrefix(string(e), "/")
}

// Path is the bulk-overwrite route for appID at e.
func (e Endpoint) Path(appID string) string {
	return "/applications/" + appID + string(e) + "/commands"
}

// Transport performs one authenticated API request with a JSON body.
type Transport interface {
	Request(ctx context.Context, method, path string, body any) error
}

// SyncRecorder is told about every successful publish.
type SyncRecorder interface {
	RecordSync(endpoint string, count int, hash string) error
}

// Ledger publishes descriptor sets and remembers which endpoints hold one.
type Ledger struct {
	transport Transport
	appID     func() (string, error)
	compiler  *Compiler
	registry  *cmd.Registry
	recorder  SyncRecorder

	mu     sync.Mutex
	synced map[Endpoint]struct{}
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

// WithRecorder reports every publish to r.
func WithRecorder(r SyncRecorder) LedgerOption {
	return func(l *Ledger) { l.recorder = r }
}

// NewLedger returns a ledger publishing through t. appID is consulted on
// every publish since it is usually known only once the session is ready.
func NewLedger(t Transport, appID func() (string, error), compiler *Compiler, registry *cmd.Registry, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		transport: t,
		appID:     appID,
		compiler:  compiler,
		registry:  registry,
		synced:    make(map[Endpoint]struct{}),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Build compiles the current registry.
func (l *Ledger) Build(ctx context.Context) ([]*Descriptor, *Diagnostics) {
	diags := &Diagnostics{}
	return l.compiler.CompileAll(ctx, l.registry.GetAll(), diags), diags
}

// Sync replaces everything published at ep with descs and tracks ep. A nil
// descs compiles the registry and logs the diagnostics. Every call publishes.
func (l *Ledger) Sync(ctx context.Context, ep Endpoint, descs []*Descriptor) error {
	if descs == nil {
		var diags *Diagnostics
		descs, diags = l.Build(ctx)
		diags.Log()
	}
	if err := l.publish(ctx, ep, descs); err != nil {
		return fmt.Errorf("sync %s: %w", ep, err)
	}

	l.mu.Lock()
	l.synced[ep] = struct{}{}
	l.mu.Unlock()
	log.Printf("[INFO] Synced %d slash commands to %s", len(descs), ep)
	return nil
}

// Unsync publishes an empty set at ep and stops tracking it.
func (l *Ledger) Unsync(ctx context.Context, ep Endpoint) error {
	if err := l.publish(ctx, ep, []*Descriptor{}); err != nil {
		return fmt.Errorf("unsync %s: %w", ep, err)
	}

	l.mu.Lock()
	delete(l.synced, ep)
	l.mu.Unlock()
	log.Printf("[INFO] Cleared slash commands from %s", ep)
	return nil
}

// Clear unsyncs every tracked endpoint. Failures do not stop the remaining
// endpoints; they are joined into the returned error.
func (l *Ledger) Clear(ctx context.Context) error {
	var errs []error
	for _, ep := range l.Endpoints() {
		if err := l.Unsync(ctx, ep); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Endpoints returns the tracked endpoints in sorted order.
func (l *Ledger) Endpoints() []Endpoint {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Endpoint, 0, len(l.synced))
	for ep := range l.synced {
		out = append(out, ep)
	}
	slices.Sort(out)
	return out
}

// Synced reports whether ep is tracked.
func (l *Ledger) Synced(ep Endpoint) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.synced[ep]
	return ok
}

func (l *Ledger) publish(ctx context.Context, ep Endpoint, descs []*Descriptor) error {
	if descs == nil {
		descs = []*Descriptor{}
	}
	appID, err := l.appID()
	if err != nil {
		return fmt.Errorf("application id: %w", err)
	}
	if err := l.transport.Request(ctx, http.MethodPut, ep.Path(appID), descs); err != nil {
		return err
	}

	if l.recorder != nil {
		hash, err := PayloadHash(descs)
		if err == nil {
			err = l.recorder.RecordSync(ep.String(), len(descs), hash)
		}
		if err != nil {
			log.Printf("[WARN] Failed to record sync of %s: %v", ep, err)
		}
	}
	return nil
}

// PayloadHash is the hex SHA-256 of the JSON encoding of descs.
func PayloadHash(descs []*Descriptor) (string, error) {
	data, err := json.Marshal(descs)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
