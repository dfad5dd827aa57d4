package resolver

var (
	ResolverRequestsTotal  = resolverRequestsTotal
	ValidatorRequestsTotal = validatorRequestsTotal
)
