// Package api exposes the repositories over HTTP with chi.
//
// Routes:
//
//	GET    /products                 list products
//	POST   /products                 add a product (caller supplies the id)
//	GET    /products/{id}            get a product
//	PUT    /products/{id}            replace a product, responds with the previous record
//	DELETE /products/{id}            delete a product
//	GET    /baskets                  list baskets
//	POST   /baskets                  add a basket (id allocated per customer)
//	GET    /baskets/customer/{name}  baskets of a customer
//	GET|PUT|DELETE /baskets/{id}
//	GET    /orders                   list orders
//	POST   /orders                   add an order (id allocated per customer)
//	GET    /orders/customer/{name}   orders of a customer
//	GET|PUT|DELETE /orders/{id}
//	GET    /healthz
//	GET    /metrics                  when metrics are enabled
//
// Errors are returned as {"error": "...", "requestId": "..."} with a status
// derived from the repository error: 404 for repository.ErrNotFound, 409 for
// repository.ErrIDConflict, 400 for malformed or invalid input and 500 for
// store failures.
package api
