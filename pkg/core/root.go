package core

// Root is the anchor of a presenter tree. It is the only node allowed to be
// attached without a parent, and it owns the service registry and the
// scheduler every attached presenter uses.
type Root struct {
	nodeBase
	registry  *Registry
	scheduler *Scheduler
}

// NewRoot creates a detached root. A nil scheduler gets a fresh one.
func NewRoot(scheduler *Scheduler) *Root {
	if scheduler == nil {
		scheduler = NewScheduler()
	}
	r := &Root{
		registry:  NewRegistry(),
		scheduler: scheduler,
	}
	r.init(r, "root")
	return r
}

// Registry returns the root's service and listener registry.
func (r *Root) Registry() *Registry {
	return r.registry
}

// Scheduler returns the scheduler shared by the tree.
func (r *Root) Scheduler() *Scheduler {
	return r.scheduler
}

// Attach attaches the root and every current descendant.
func (r *Root) Attach() {
	r.AttachToRoot(r)
}

// Detach detaches every descendant and then the root.
func (r *Root) Detach() {
	r.DetachFromRoot()
}
