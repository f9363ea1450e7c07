package secondary

// ConnectivityMonitor defines the secondary port for network reachability.
// Readings are point in time; nothing ties a reading to a later request.
type ConnectivityMonitor interface {
	// Offline returns the current reading.
	Offline() bool

	// Subscribe registers fn to receive every change of the reading and
	// returns a function that removes the subscription.
	Subscribe(fn func(offline bool)) (unsubscribe func())
}
