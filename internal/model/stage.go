package model

// CallStage identifies one of the five fixed recovery-call offsets. The
// campaign always advances through stages in ascending order.
type CallStage int

const (
	Stage2Hour CallStage = iota
	Stage4Hour
	Stage8Hour
	Stage16Hour
	Stage24Hour
)

// CallStages lists all stages in campaign order.
var CallStages = [5]CallStage{Stage2Hour, Stage4Hour, Stage8Hour, Stage16Hour, Stage24Hour}

var stageNames = [5]string{"2_hour", "4_hour", "8_hour", "16_hour", "24_hour"}

func (s CallStage) String() string {
	if s < Stage2Hour || s > Stage24Hour {
		return "unknown"
	}
	return stageNames[s]
}

// Column is the stage flag column shared by call_logs and abandoned_carts.
func (s CallStage) Column() string {
	return "call_" + s.String()
}

// TimeColumn is the stage timestamp column on abandoned_carts.
func (s CallStage) TimeColumn() string {
	return s.Column() + "_at"
}
