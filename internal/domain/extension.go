package domain

type ExtensionState string

const (
	ExtensionDiscovered ExtensionState = "discovered"
	ExtensionLoaded     ExtensionState = "loaded"
	ExtensionFailed     ExtensionState = "failed"
)

type Extension struct {
	Name  string
	State ExtensionState
	Err   error
}
