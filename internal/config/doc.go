// Package config provides configuration parsing for quark projects.
//
// The configuration is stored in quark.json at the project root and is
// read by the quark command. Every field is optional.
//
// # Configuration File Structure
//
//	{
//	  "name": "demo",
//	  "render": {
//	    "debug": true,
//	    "pretty": true,
//	    "container": "main"
//	  },
//	  "devtools": {
//	    "host": "localhost",
//	    "port": 7070
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "quark"
//	  },
//	  "tracing": {
//	    "enabled": false
//	  },
//	  "snapshot": {
//	    "dir": "snapshots",
//	    "bucket": "my-bucket",
//	    "prefix": "site",
//	    "region": "eu-west-1"
//	  },
//	  "bench": {
//	    "iterations": 200,
//	    "rows": 1000
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.LoadFromWorkingDir()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Devtools:", cfg.DevtoolsAddress())
package config
