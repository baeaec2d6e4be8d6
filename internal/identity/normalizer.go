// Package identity turns a raw account record, in either its owner or staff
// shape, into the canonical domain.Identity.
package identity

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/spec-kit/dashboard-session/internal/domain"
	"github.com/spec-kit/dashboard-session/internal/events"
	"github.com/spec-kit/dashboard-session/internal/observability"
)

// field names a canonical Identity field resolved from the record.
type field string

const (
	fieldEmail        field = "email"
	fieldPhone        field = "phone"
	fieldCompany      field = "company"
	fieldCountryCode  field = "country_code"
	fieldSubscription field = "subscription"
	fieldProof        field = "proof"
	fieldType         field = "type"
	fieldName         field = "name"
	fieldRole         field = "role"
	fieldOwnerEmail   field = "owner_email"
	fieldAccountID    field = "account_id"
	fieldPhoto        field = "photo"
)

// precedence lists, per canonical field, the record paths tried in order. The
// first value that is non-empty once rendered as a string wins; blank strings
// and non-scalar values fall through to the next path. The document searched is
// {"id": <record id>, "name": <metadata name>, "keyvalues": <metadata keyvalues>}.
var precedence = []struct {
	field field
	chain []string
}{
	{fieldEmail, []string{kv(domain.StaffEmail), kv(domain.OwnerEmail)}},
	{fieldPhone, []string{kv(domain.StaffPhone), kv(domain.OwnerPhone)}},
	{fieldCompany, []string{kv(domain.OwnerCompany), kv(domain.StaffAccountEmail)}},
	{fieldCountryCode, []string{kv(domain.StaffCountryCode), kv(domain.OwnerCountryCode)}},
	{fieldSubscription, []string{kv(domain.OwnerSubscriptionID)}},
	{fieldProof, []string{kv(domain.OwnerProof)}},
	{fieldType, []string{kv(domain.OwnerType)}},
	{fieldName, []string{kv(domain.StaffName), "name", kv(domain.OwnerName)}},
	{fieldRole, []string{kv(domain.StaffRole)}},
	// Owner email falls back to self email, which is itself the email chain.
	{fieldOwnerEmail, []string{kv(domain.StaffAccountEmail), kv(domain.StaffEmail), kv(domain.OwnerEmail)}},
	{fieldAccountID, []string{kv(domain.StaffAccountID), kv(domain.OwnerAccountID), "id"}},
	{fieldPhoto, []string{kv(domain.StaffPhoto)}},
}

func kv(key string) string {
	return "keyvalues." + key
}

type searchFunc func(data interface{}) (interface{}, error)

// Normalizer evaluates the precedence table against raw records. It is safe
// for concurrent use.
type Normalizer struct {
	exprs      map[field][]searchFunc
	logger     *zap.Logger
	metrics    *observability.Metrics
	dispatcher events.Dispatcher
}

// Option customizes a Normalizer.
type Option func(*Normalizer)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(n *Normalizer) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithMetrics counts normalizations per record variant.
func WithMetrics(m *observability.Metrics) Option {
	return func(n *Normalizer) { n.metrics = m }
}

// WithDispatcher publishes identity_normalized after each normalization.
func WithDispatcher(d events.Dispatcher) Option {
	return func(n *Normalizer) { n.dispatcher = d }
}

// NewNormalizer compiles the precedence table.
func NewNormalizer(opts ...Option) (*Normalizer, error) {
	n := &Normalizer{
		exprs:  make(map[field][]searchFunc, len(precedence)),
		logger: zap.NewNop(),
	}
	for _, p := range precedence {
		chain := make([]searchFunc, 0, len(p.chain))
		for _, path := range p.chain {
			compiled, err := jmespath.Compile(path)
			if err != nil {
				return nil, fmt.Errorf("compile %s precedence %q: %w", p.field, path, err)
			}
			chain = append(chain, compiled.Search)
		}
		n.exprs[p.field] = chain
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// MustNewNormalizer is NewNormalizer that panics on error.
func MustNewNormalizer(opts ...Option) *Normalizer {
	n, err := NewNormalizer(opts...)
	if err != nil {
		panic(err)
	}
	return n
}

// Normalize builds the canonical identity. It never fails: a record with
// neither owner nor staff fields yields an identity made of defaults.
func (n *Normalizer) Normalize(record domain.RawAccountRecord) domain.Identity {
	variant := record.Variant()
	if variant == domain.VariantUnknown {
		n.logger.Warn("normalizing account record without known fields",
			zap.String("record_id", record.ID),
			zap.Error(domain.ErrMalformedAccountRecord))
	}

	doc := map[string]interface{}{
		"id":        record.ID,
		"name":      record.Metadata.Name,
		"keyvalues": keyValues(record.Metadata.KeyValues),
	}

	email := n.resolve(fieldEmail, doc)
	name := n.resolve(fieldName, doc)
	if name == "" {
		name = DisplayNameFromEmail(email)
	}

	id := domain.Identity{
		ID:           record.ID,
		Email:        email,
		Phone:        n.resolve(fieldPhone, doc),
		Company:      n.resolve(fieldCompany, doc),
		CountryCode:  n.resolve(fieldCountryCode, doc),
		Subscription: orDefault(n.resolve(fieldSubscription, doc), domain.DefaultSubscription),
		Proof:        n.resolve(fieldProof, doc),
		Type:         orDefault(n.resolve(fieldType, doc), domain.DefaultAccountType),
		Name:         name,
		CreatedAt:    record.PinnedAt,
		Hash:         record.Hash,
		AccountID:    n.resolve(fieldAccountID, doc),
		Role:         orDefault(n.resolve(fieldRole, doc), domain.DefaultRole),
		OwnerEmail:   n.resolve(fieldOwnerEmail, doc),
		Photo:        n.resolve(fieldPhoto, doc),
		Variant:      variant,
	}

	n.metrics.RecordNormalization(string(variant))
	return id
}

// NormalizeAndPublish normalizes record and announces the result.
func (n *Normalizer) NormalizeAndPublish(ctx context.Context, record domain.RawAccountRecord) domain.Identity {
	id := n.Normalize(record)
	if n.dispatcher != nil {
		evt := events.NewEvent(events.EventIdentityNormalized, "", events.IdentityNormalizedPayload{
			Variant:   string(id.Variant),
			AccountID: id.AccountID,
		})
		if err := n.dispatcher.Publish(ctx, evt); err != nil {
			n.logger.Warn("identity listeners failed", zap.Error(err))
		}
	}
	return id
}

// DisplayNameFromEmail title-cases the dot-separated parts of the email local
// part, e.g. "jane.doe@co.com" becomes "Jane Doe". An empty email gives "User".
func DisplayNameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	// A Caser is stateful; one per call keeps Normalize goroutine safe.
	caser := cases.Title(language.Und)
	parts := make([]string, 0, 2)
	for _, seg := range strings.Split(local, ".") {
		if seg == "" {
			continue
		}
		parts = append(parts, caser.String(seg))
	}
	if len(parts) == 0 {
		return domain.DefaultDisplayName
	}
	return strings.Join(parts, " ")
}

func (n *Normalizer) resolve(f field, doc map[string]interface{}) string {
	for _, search := range n.exprs[f] {
		v, err := search(doc)
		if err != nil {
			n.logger.Debug("precedence lookup failed", zap.String("field", string(f)), zap.Error(err))
			continue
		}
		if s := stringify(v); s != "" {
			return s
		}
	}
	return ""
}

// keyValues never hands jmespath a nil map.
func keyValues(in map[string]any) map[string]interface{} {
	if in == nil {
		return map[string]interface{}{}
	}
	return in
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
