package faultlog

// Observer receives store activity for metrics. Implementations must be cheap and
// safe for concurrent use.
type Observer interface {
	Appended(kind Kind)
	Cleared()
	StorageFault(op string)
	SubscriberFault()
}

type nopObserver struct{}

func (nopObserver) Appended(Kind)       {}
func (nopObserver) Cleared()            {}
func (nopObserver) StorageFault(string) {}
func (nopObserver) SubscriberFault()    {}
