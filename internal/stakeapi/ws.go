package stakeapi

const MessageTargetSync = "sync"

// WsResponseData is the frame pushed to a connected client when its balances
// change.
type WsResponseData struct {
	Target  string           `json:"target"`
	Profile ProfileData      `json:"profile"`
	Plans   []InvestmentPlan `json:"plans"`
}
