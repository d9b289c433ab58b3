package spin

// Phase is a state of the spin state machine
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseDebiting     Phase = "debiting"
	PhaseDrawing      Phase = "drawing"
	PhaseAccelerating Phase = "accelerating"
	PhaseSpinning     Phase = "spinning"
	PhaseReel1Stopped Phase = "reel_1_stopped"
	PhaseReel2Stopped Phase = "reel_2_stopped"
	PhaseReel3Stopped Phase = "reel_3_stopped"
	PhaseSettling     Phase = "settling"
)

var reelStopped = [...]Phase{PhaseReel1Stopped, PhaseReel2Stopped, PhaseReel3Stopped}

// Animating reports whether the phase is one of the timed reel stages
func (p Phase) Animating() bool {
	switch p {
	case PhaseAccelerating, PhaseSpinning, PhaseReel1Stopped, PhaseReel2Stopped, PhaseReel3Stopped:
		return true
	default:
		return false
	}
}
