// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restserver publishes an enamel.Enamel store as a REST
// service.  The restclient package is a matching client.
//
// The complete REST API is defined in the restdata package.  In
// particular, note that the URLs described here are not actually part
// of the API.
//
// # HTTP Considerations
//
// Every response carries an Openstack-Request-ID header with a fresh
// request ID, and the negotiated microversion in the
// OpenStack-enamel-API-Version header.  A request for a version this
// server cannot provide fails with 406 Not Acceptable.
//
// This interface does not support HTTP caching or authentication.
// The X-User-Id and X-Project-Id headers, normally set by an
// authenticating proxy, are recorded on server boot tasks.
//
// # MIME Types
//
// This interface understands MIME types as follows:
//
//	application/vnd.enamel+json
//	application/json
//	text/json
//
// Request bodies in any other type are rejected with 415 Unsupported
// Media Type.
//
// # URL Scheme
//
// Tasks and task items are addressed by UUID.  The following URLs
// are defined:
//
//	/
//	/servers
//	/tasks
//	/tasks/{task}
//	/task_items              (microversion 1.0)
//	/task_items/{item}
package restserver
