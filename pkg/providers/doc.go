// Package providers defines the provider abstraction used by the router:
// a uniform Generate capability over interchangeable text-generation
// backends, plus the fixed error taxonomy the failover loop dispatches on.
//
// # Error taxonomy
//
// Every adapter classifies backend failures into exactly four types:
//
//   - *RateLimitError: transient; the router cools the provider down and
//     tries the next candidate.
//   - *QuotaError: the account is out of quota; the router disables the
//     provider until an operator re-enables it.
//   - *CredentialsError: the API key was rejected.
//   - *ProviderError: everything else.
//
// The classification is provider-specific (each backend words its failures
// differently) but the output taxonomy is not.
//
// # Status state machine
//
// Each provider carries a Status guarded by a per-provider mutex. The only
// automatic transition is RateLimited back to Available, and it happens
// lazily inside IsAvailable once the advertised reset deadline passes; there
// are no background timers. Error, Unavailable, and Maintenance require an
// explicit SetStatus to clear.
//
// Concrete adapters live in the openai, anthropic, and mock subpackages;
// providerfactory assembles them from configuration.
package providers
