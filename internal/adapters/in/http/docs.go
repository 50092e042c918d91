// Package http is the echo front-end of the order service.
//
// Routes:
//
//	POST /api/v1/orders                    create an order in SUBMITTED
//	GET  /api/v1/orders/:orderId           read an order
//	POST /api/v1/orders/:orderId/pay       send PAY
//	POST /api/v1/orders/:orderId/fulfill   send FULFILL
//	POST /api/v1/orders/:orderId/cancel    send CANCEL
//	POST /api/v1/orders/:orderId/events    send any event with extra headers
//	GET  /api/v1/openapi.yaml              the API document
//	GET  /health                           liveness
//	GET  /metrics                          Prometheus metrics
//
// Rejected events answer 409 with the unchanged state, unknown orders 404,
// malformed input 400 and store failures 500.
package http
