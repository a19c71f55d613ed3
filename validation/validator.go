/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package validation

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"time"

	"github.com/go-openapi/strfmt"
	"go.uber.org/zap"

	"github.com/suparena/unitofwork/entity"
	"github.com/suparena/unitofwork/errors"
	"github.com/suparena/unitofwork/registry"
)

// Validator checks a computed payload before it becomes a change set.
type Validator interface {
	Validate(e entity.Entity, payload map[string]any, meta *registry.EntityMetadata) error
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(e entity.Entity, payload map[string]any, meta *registry.EntityMetadata) error

// Validate implements Validator.
func (f ValidatorFunc) Validate(e entity.Entity, payload map[string]any, meta *registry.EntityMetadata) error {
	return f(e, payload, meta)
}

// Nop accepts every payload.
var Nop Validator = ValidatorFunc(func(entity.Entity, map[string]any, *registry.EntityMetadata) error {
	return nil
})

const (
	// EngineExpr evaluates rules with expr-lang.
	EngineExpr = "expr"
	// EngineCEL evaluates rules with the Common Expression Language.
	EngineCEL = "cel"

	ruleRequired = "required"
)

// Option configures a MetadataValidator.
type Option func(*MetadataValidator)

// WithLogger sets the logger used to report rule failures.
func WithLogger(logger *zap.Logger) Option {
	return func(v *MetadataValidator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithDefaultEngine sets the engine used for rules that don't name one.
func WithDefaultEngine(engine string) Option {
	return func(v *MetadataValidator) {
		if engine != "" {
			v.defaultEngine = engine
		}
	}
}

// MetadataValidator enforces the Required flags and Rules declared in metadata.
//
// An entity without a persistent identifier is validated as an insert: every
// required property must be present and not blank (nil, or an empty string, slice
// or map). Otherwise only the keys present in the payload are checked. A required many-to-one property is satisfied by an
// assigned reference even when the target has no key yet.
type MetadataValidator struct {
	logger        *zap.Logger
	defaultEngine string
	programs      *programCache
}

// New creates a MetadataValidator.
func New(opts ...Option) *MetadataValidator {
	v := &MetadataValidator{
		logger:        zap.NewNop(),
		defaultEngine: EngineExpr,
		programs:      newProgramCache(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// Validate implements Validator. Every violation is reported; the result is an
// errors.Join of ValidationErrors, or a ConfigurationError for a rule that does
// not compile.
func (v *MetadataValidator) Validate(e entity.Entity, payload map[string]any, meta *registry.EntityMetadata) error {
	insert := isInsert(e, meta)
	var errs []error

	for _, name := range meta.SortedNames() {
		p := meta.Properties[name]
		value, present := payload[name]

		if p.Required && !p.Kind.IsCollection() && !p.Primary {
			if msg := checkRequired(e, p, value, present, insert); msg != "" {
				errs = append(errs, errors.NewValidationError(meta.Name, e.TransientID(), name, ruleRequired, msg))
			}
		}

		if !present || len(p.Rules) == 0 || isNil(value) {
			continue
		}
		for _, rule := range p.Rules {
			if err := v.checkRule(e, meta, p, rule, value, payload); err != nil {
				if errors.IsConfigurationError(err) {
					return err
				}
				errs = append(errs, err)
			}
		}
	}
	return stderrors.Join(errs...)
}

func checkRequired(e entity.Entity, p *registry.PropertyDescriptor, value any, present, insert bool) string {
	if p.Kind == registry.ManyToOne {
		raw, ok := entity.Get(e, p.Name)
		if !ok {
			return "property is not accessible"
		}
		state, _, _ := entity.Deref(raw)
		switch {
		case insert && state != entity.Assigned:
			return "relationship must be assigned"
		case !insert && present && state == entity.None:
			return "relationship must not be cleared"
		}
		return ""
	}
	switch {
	case insert && !present:
		return "value is required"
	case present && isBlank(value):
		return "value must not be empty"
	}
	return ""
}

func (v *MetadataValidator) checkRule(e entity.Entity, meta *registry.EntityMetadata, p *registry.PropertyDescriptor, rule registry.Rule, value any, payload map[string]any) error {
	engine := rule.Engine
	if engine == "" {
		engine = v.defaultEngine
	}
	ruleName := rule.Name
	if ruleName == "" {
		ruleName = rule.Expr
	}

	prg, err := v.programs.load(engine, rule.Expr)
	if err != nil {
		return errors.NewConfigurationError(meta.Name, fmt.Sprintf("rule %q on %s: %v", ruleName, p.Name, err))
	}

	env := map[string]any{
		"value":   plain(value),
		"payload": plainMap(payload),
		"entity":  properties(e, meta),
	}
	ok, err := prg.eval(env)
	if err != nil {
		v.logger.Debug("rule evaluation failed",
			zap.String("entity", meta.Name),
			zap.String("property", p.Name),
			zap.String("rule", ruleName),
			zap.Error(err))
		return errors.NewValidationError(meta.Name, e.TransientID(), p.Name, ruleName, err.Error())
	}
	if !ok {
		return errors.NewValidationError(meta.Name, e.TransientID(), p.Name, ruleName, fmt.Sprintf("rule not satisfied by %v", plain(value)))
	}
	return nil
}

func isInsert(e entity.Entity, meta *registry.EntityMetadata) bool {
	key, ok := entity.Get(e, meta.PrimaryKey)
	return !ok || entity.IsZero(key)
}

// properties exposes the entity's scalar properties to rules.
func properties(e entity.Entity, meta *registry.EntityMetadata) map[string]any {
	out := make(map[string]any, len(meta.Properties))
	for name, p := range meta.Properties {
		if p.Kind != registry.Scalar {
			continue
		}
		if v, ok := entity.Get(e, name); ok {
			out[name] = plain(v)
		}
	}
	return out
}

func plainMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = plain(v)
	}
	return out
}

// plain converts values to shapes both rule engines understand: pointers are
// followed and strfmt times become time.Time.
func plain(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.CanInterface() {
		return v
	}
	switch t := rv.Interface().(type) {
	case strfmt.DateTime:
		return time.Time(t)
	case strfmt.Date:
		return time.Time(t)
	default:
		return t
	}
}

func isNil(v any) bool {
	return plain(v) == nil
}

// isBlank reports nil values and empty strings, slices and maps. Zero numbers
// and false are real values.
func isBlank(v any) bool {
	p := plain(v)
	if p == nil {
		return true
	}
	rv := reflect.ValueOf(p)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map:
		return rv.Len() == 0
	}
	return false
}
