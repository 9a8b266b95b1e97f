// Package transition decides when a watched condition has newly become true.
//
// A persisted flag remembers that the notification for the current
// occurrence was sent. Only a false→true move notifies; a true→false move
// re-arms the flag; anything else leaves the stored value alone.
package transition

import (
	"fmt"

	"github.com/torn-watcher/internal/domain"
	"github.com/torn-watcher/internal/infrastructure/torn"
)

// Chain warning thresholds.
const (
	ChainMinHits     = 10
	ChainWarnSeconds = 60
)

// Outcome is the decision for one flag.
type Outcome struct {
	Notify bool
	Write  bool
	Value  bool
}

// Decide is the pure transition rule for a single flag.
func Decide(previous, condition bool) Outcome {
	switch {
	case !previous && condition:
		return Outcome{Notify: true, Write: true, Value: true}
	case previous && !condition:
		return Outcome{Write: true, Value: false}
	default:
		return Outcome{}
	}
}

// Change is a flag that must be written, with the message to send when it fired.
type Change struct {
	Flag   domain.Flag
	Value  bool
	Notify bool
	Title  string
	Body   string
}

// rule maps fetched state to a condition. ok is false when the state needed
// for the condition is absent, in which case the flag is left untouched.
type rule struct {
	flag  domain.Flag
	title string
	check func(u *torn.UserResponse) (met, ok bool)
	body  func(u *torn.UserResponse) string
}

var rules = []rule{
	{domain.FlagEnergyFull, "⚡ Energy Full", barFull(func(u *torn.UserResponse) *torn.Bar { return u.Energy }), barBody("Energy", func(u *torn.UserResponse) *torn.Bar { return u.Energy })},
	{domain.FlagNerveFull, "💢 Nerve Full", barFull(func(u *torn.UserResponse) *torn.Bar { return u.Nerve }), barBody("Nerve", func(u *torn.UserResponse) *torn.Bar { return u.Nerve })},
	{domain.FlagHappyFull, "😊 Happy Full", barFull(func(u *torn.UserResponse) *torn.Bar { return u.Happy }), barBody("Happy", func(u *torn.UserResponse) *torn.Bar { return u.Happy })},
	{domain.FlagLifeFull, "❤️ Life Full", barFull(func(u *torn.UserResponse) *torn.Bar { return u.Life }), barBody("Life", func(u *torn.UserResponse) *torn.Bar { return u.Life })},
	{
		domain.FlagTravelLanded, "✈️ Landed",
		func(u *torn.UserResponse) (bool, bool) {
			if u.Travel == nil {
				return false, false
			}
			return u.Travel.TimeLeft == 0, true
		},
		func(u *torn.UserResponse) string { return fmt.Sprintf("You have arrived in %s", u.Travel.Destination) },
	},
	{domain.FlagDrugsReady, "💊 Drug Cooldown Over", cooldownDone(func(c *torn.Cooldowns) int64 { return c.Drug }), fixed("You can take another drug")},
	{domain.FlagBoosterReady, "🚀 Booster Cooldown Over", cooldownDone(func(c *torn.Cooldowns) int64 { return c.Booster }), fixed("You can use another booster")},
	{domain.FlagMedicalOut, "🩹 Medical Cooldown Over", cooldownDone(func(c *torn.Cooldowns) int64 { return c.Medical }), fixed("You can use medical items again")},
	{
		domain.FlagJailFree, "🔓 Out of Jail",
		func(u *torn.UserResponse) (bool, bool) {
			if u.Status == nil {
				return false, false
			}
			return u.Status.State != "Jail", true
		},
		fixed("You are out of jail"),
	},
	{
		domain.FlagEduComplete, "🎓 Education Complete",
		func(u *torn.UserResponse) (bool, bool) {
			if u.EducationTimeLeft == nil {
				return false, false
			}
			return *u.EducationTimeLeft == 0, true
		},
		fixed("Your course has finished, pick the next one"),
	},
	{
		domain.FlagChainWarning, "⛓️ Chain Expiring",
		func(u *torn.UserResponse) (bool, bool) {
			if u.Chain == nil {
				return false, false
			}
			c := u.Chain
			return c.Current >= ChainMinHits && c.Timeout > 0 && c.Timeout <= ChainWarnSeconds, true
		},
		func(u *torn.UserResponse) string {
			return fmt.Sprintf("Chain at %d hits times out in %ds", u.Chain.Current, u.Chain.Timeout)
		},
	},
}

// Evaluate runs every flag rule against freshly fetched state and returns the
// flags that must be written. Flags with no state in u are skipped.
func Evaluate(prev domain.UserStatusFlags, u *torn.UserResponse) []Change {
	var changes []Change
	for _, r := range rules {
		met, ok := r.check(u)
		if !ok {
			continue
		}
		out := Decide(prev.Get(r.flag), met)
		if !out.Write {
			continue
		}
		c := Change{Flag: r.flag, Value: out.Value, Notify: out.Notify}
		if out.Notify {
			c.Title = r.title
			c.Body = r.body(u)
		}
		changes = append(changes, c)
	}
	return changes
}

func barFull(pick func(*torn.UserResponse) *torn.Bar) func(*torn.UserResponse) (bool, bool) {
	return func(u *torn.UserResponse) (bool, bool) {
		b := pick(u)
		if b == nil {
			return false, false
		}
		return b.Maximum > 0 && b.Current >= b.Maximum, true
	}
}

func barBody(label string, pick func(*torn.UserResponse) *torn.Bar) func(*torn.UserResponse) string {
	return func(u *torn.UserResponse) string {
		b := pick(u)
		return fmt.Sprintf("%s is full (%d/%d)", label, b.Current, b.Maximum)
	}
}

func cooldownDone(pick func(*torn.Cooldowns) int64) func(*torn.UserResponse) (bool, bool) {
	return func(u *torn.UserResponse) (bool, bool) {
		if u.Cooldowns == nil {
			return false, false
		}
		return pick(u.Cooldowns) == 0, true
	}
}

func fixed(body string) func(*torn.UserResponse) string {
	return func(*torn.UserResponse) string { return body }
}
