// Package framework contains the low-level implementation of test harness infrastructure
// that is not specific to any one backend.
//
// The general model is:
//
// 1. The test harness talks to a system under test (SUT) over HTTP. It has no access to the
// SUT's storage or code, so everything it knows comes from responses.
//
// 2. There is a general notion of a test context which is similar to Go's *testing.T,
// allowing pieces of test logic to be associated with a test identifier and to accumulate
// success/failure results. The first element of every test identifier is the phase the test
// runs in; phases run in order and a fatal failure in the setup phase skips everything after it.
//
// 3. Results are aggregated in execution order and judged by a Policy, which decides whether
// the run as a whole succeeded.
//
// The domain-specific code that knows what is being tested is responsible for providing a
// domain-specific test API on top of the test context.
package framework
