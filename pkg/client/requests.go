package client

// PartitionOptions tunes PartitionRequests.
type PartitionOptions struct {
	// HideCompletedOutgoing drops completed requests from Outgoing. NGO dashboards use it.
	HideCompletedOutgoing bool
}

// RequestPartition splits one flat request list by the caller's side.
type RequestPartition struct {
	Outgoing []BookRequest
	Incoming []BookRequest
}

// PartitionRequests puts requests the caller made in Outgoing and requests for the
// caller's books in Incoming. A request where the caller is both requester and donor
// lands in Outgoing only, so the two lists are always disjoint.
func PartitionRequests(reqs []BookRequest, uid string, opts PartitionOptions) RequestPartition {
	out := RequestPartition{Outgoing: []BookRequest{}, Incoming: []BookRequest{}}
	if uid == "" {
		return out
	}
	for _, r := range reqs {
		switch {
		case r.RequesterUID == uid:
			if opts.HideCompletedOutgoing && r.Status == StatusCompleted {
				continue
			}
			out.Outgoing = append(out.Outgoing, r)
		case r.DonorUID == uid:
			out.Incoming = append(out.Incoming, r)
		}
	}
	return out
}

// AwaitingResponse returns the incoming requests still pending.
func (p RequestPartition) AwaitingResponse() []BookRequest {
	out := []BookRequest{}
	for _, r := range p.Incoming {
		if r.Status == StatusPending {
			out = append(out, r)
		}
	}
	return out
}
