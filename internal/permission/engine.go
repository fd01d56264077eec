// Package permission decides whether an actor may perform an action against
// the current room state. Rules are pure: they read the context and never
// mutate domain state.
package permission

import (
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Gavel/internal/domain"
)

// Result is allow or deny(reason).
type Result struct {
	allowed bool
	reason  string
}

func Allow() Result             { return Result{allowed: true} }
func Deny(reason string) Result { return Result{reason: reason} }

func (r Result) Allowed() bool  { return r.allowed }
func (r Result) Reason() string { return r.reason }

// Params carries typed action parameters. A rule that needs a missing
// field must deny, never panic.
type Params struct {
	BidAmount    *int64
	TargetUserID domain.UserID
}

func BidParams(amount int64) Params {
	return Params{BidAmount: &amount}
}

func KickParams(target domain.UserID) Params {
	return Params{TargetUserID: target}
}

// Context is what a rule evaluates against. The room is a read-only view.
type Context struct {
	Actor  *domain.User
	Room   *domain.Room
	Action domain.Action
	Params Params
}

// Rule gates one action. Higher priority rules run first.
type Rule struct {
	Action   domain.Action
	Priority int
	Name     string
	Check    func(Context) Result
}

// Engine evaluates the registered rules for an action in descending
// priority order, short-circuiting on the first denial. Actions with no
// rules are denied outright.
type Engine struct {
	rules map[domain.Action][]Rule
}

func NewEngine(rules ...Rule) *Engine {
	e := &Engine{rules: make(map[domain.Action][]Rule)}
	for _, r := range rules {
		e.Add(r)
	}
	return e
}

// Add registers a rule. Registration order is preserved for rules of equal
// priority.
func (e *Engine) Add(rule Rule) {
	bucket := append(e.rules[rule.Action], rule)
	sort.SliceStable(bucket, func(i, j int) bool {
		return bucket[i].Priority > bucket[j].Priority
	})
	e.rules[rule.Action] = bucket
}

func (e *Engine) Evaluate(ctx Context) Result {
	bucket, ok := e.rules[ctx.Action]
	if !ok || len(bucket) == 0 {
		return Deny("this operation is not available")
	}
	for _, rule := range bucket {
		if res := rule.Check(ctx); !res.Allowed() {
			log.Debug().
				Str("module", "permission.engine").
				Str("actor", string(ctx.Actor.ID)).
				Str("action", string(ctx.Action)).
				Str("rule", rule.Name).
				Str("reason", res.Reason()).
				Msg("denied")
			return res
		}
	}
	log.Debug().
		Str("module", "permission.engine").
		Str("actor", string(ctx.Actor.ID)).
		Str("action", string(ctx.Action)).
		Msg("allowed")
	return Allow()
}
