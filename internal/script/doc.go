// Package script runs allocator scenarios described in HuJSON files.
//
// A scenario names a region, then lists steps. Pointers returned by
// allocation steps are bound to names that later steps refer to:
//
//	{
//	  "version": "1.0.0",
//	  "region": {"kind": "buffer", "limit": 4096},
//	  "steps": [
//	    {"op": "malloc", "size": 100, "name": "a"},
//	    {"op": "overrun", "ptr": "a", "count": 1},
//	    {"op": "validate", "expect": "fence-violation"},
//	  ],
//	}
//
// Comments and trailing commas are allowed. The version must satisfy
// SupportedVersions.
package script
