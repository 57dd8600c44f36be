// Package soap invokes remote actions over SOAP.
//
// A Soaper builds the request envelope for an action, posts it to the
// service's control endpoint (with HTTP digest authentication when the
// client is configured with credentials), maps failure responses through
// the fault package and parses the out-arguments of success responses,
// coercing each value according to its state-variable data type.
//
// Type coercion is deliberately lenient: device firmware versions are
// not always internally consistent, so a value that fails to convert is
// returned as its raw text instead of failing the whole call.
package soap
