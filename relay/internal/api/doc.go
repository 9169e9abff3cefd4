// Package api is the relay's REST surface: room creation, the emit
// endpoint clients publish through, the lookups the clients bootstrap from
// (@me, webhook, stream) and the periodic time-check submission. Routing
// is chi; every handler assumes the auth middleware already ran.
package api
