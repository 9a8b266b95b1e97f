package domain

// Flag names a persisted per-user boolean that records whether the
// notification for the current occurrence of a condition was already sent.
// The value doubles as the DynamoDB attribute name on the user row.
type Flag string

const (
	FlagEnergyFull   Flag = "energy_full"
	FlagNerveFull    Flag = "nerve_full"
	FlagHappyFull    Flag = "happy_full"
	FlagLifeFull     Flag = "life_full"
	FlagTravelLanded Flag = "travel_landed"
	FlagDrugsReady   Flag = "drugs_ready"
	FlagBoosterReady Flag = "booster_ready"
	FlagMedicalOut   Flag = "medical_out"
	FlagJailFree     Flag = "jail_free"
	FlagEduComplete  Flag = "edu_complete"
	FlagChainWarning Flag = "chain_warning"
)

// AllFlags lists every tracked flag in a stable order.
var AllFlags = []Flag{
	FlagEnergyFull,
	FlagNerveFull,
	FlagHappyFull,
	FlagLifeFull,
	FlagTravelLanded,
	FlagDrugsReady,
	FlagBoosterReady,
	FlagMedicalOut,
	FlagJailFree,
	FlagEduComplete,
	FlagChainWarning,
}

// UserStatusFlags is the flag set stored inline on a user row.
type UserStatusFlags struct {
	EnergyFull   bool `json:"energy_full" dynamodbav:"energy_full"`
	NerveFull    bool `json:"nerve_full" dynamodbav:"nerve_full"`
	HappyFull    bool `json:"happy_full" dynamodbav:"happy_full"`
	LifeFull     bool `json:"life_full" dynamodbav:"life_full"`
	TravelLanded bool `json:"travel_landed" dynamodbav:"travel_landed"`
	DrugsReady   bool `json:"drugs_ready" dynamodbav:"drugs_ready"`
	BoosterReady bool `json:"booster_ready" dynamodbav:"booster_ready"`
	MedicalOut   bool `json:"medical_out" dynamodbav:"medical_out"`
	JailFree     bool `json:"jail_free" dynamodbav:"jail_free"`
	EduComplete  bool `json:"edu_complete" dynamodbav:"edu_complete"`
	ChainWarning bool `json:"chain_warning" dynamodbav:"chain_warning"`
}

// Get returns the stored value of f. Unknown flags read as false.
func (s UserStatusFlags) Get(f Flag) bool {
	if p := s.field(f); p != nil {
		return *p
	}
	return false
}

// Set stores v for f. Unknown flags are ignored.
func (s *UserStatusFlags) Set(f Flag, v bool) {
	if p := s.field(f); p != nil {
		*p = v
	}
}

func (s *UserStatusFlags) field(f Flag) *bool {
	switch f {
	case FlagEnergyFull:
		return &s.EnergyFull
	case FlagNerveFull:
		return &s.NerveFull
	case FlagHappyFull:
		return &s.HappyFull
	case FlagLifeFull:
		return &s.LifeFull
	case FlagTravelLanded:
		return &s.TravelLanded
	case FlagDrugsReady:
		return &s.DrugsReady
	case FlagBoosterReady:
		return &s.BoosterReady
	case FlagMedicalOut:
		return &s.MedicalOut
	case FlagJailFree:
		return &s.JailFree
	case FlagEduComplete:
		return &s.EduComplete
	case FlagChainWarning:
		return &s.ChainWarning
	}
	return nil
}
