// Package helmsman provides in-process control-authority arbitration for
// Go autonomy stacks, plus a file-transport client for a running helmsman
// daemon.
//
// The embedded arbiter evaluates the full priority chain (operator
// override, hard safety rules, hysteresis, phase rules) without any
// daemon:
//
//	arb, err := helmsman.New(helmsman.WithMinModeDuration(2 * time.Minute))
//	d, err := arb.Evaluate(helmsman.Situation{
//	    RecommendedMode:       helmsman.ModeHuman,
//	    HumanReliability:      helmsman.Float(0.85),
//	    AutonomousReliability: helmsman.Float(0.55),
//	    Phase:                 "Inspection",
//	})
//	if d.Action == helmsman.ActionAsk && operatorAccepts() {
//	    arb.Apply(d.TargetMode)
//	}
//
// The Client talks to a running daemon through its file transport instead,
// for processes that should not own the arbitration state themselves.
//
// The SDK links directly against internal packages for zero-subprocess
// overhead. External users import github.com/oceanbotics/helmsman/sdk/go/helmsman.
package helmsman
