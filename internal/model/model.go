package model

type SyncMode string

const (
	SyncModeOneWay SyncMode = "one-way"
	SyncModeTwoWay SyncMode = "two-way"
)

func (m SyncMode) Valid() bool {
	return m == SyncModeOneWay || m == SyncModeTwoWay
}
