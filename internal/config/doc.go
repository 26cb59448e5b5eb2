// Package config holds the process-level options for directory settings.
//
// Options control which file name is looked up in each directory, the erase
// marker and opt-out key, logging, and watcher debounce. They are loaded with
// viper from built-in defaults, an optional config file and DIRSETTINGS_
// environment variables, in increasing order of precedence.
//
// # Sub-packages
//
//   - loader: reads and decodes one directory's settings document
//   - layer: settings maps, shallow overlay and diffing
//   - placeholder: $name / ${name} expansion
//   - resolver: root-to-leaf resolution with a per-directory cache
//   - notify: change notification for applied settings
//   - watcher: settings file watching for live reload
//
// # Settings Files
//
// A settings file holds a JSON object. Comments and trailing commas are
// accepted:
//
//	// /home/me/project/.sublime-settings
//	{
//	    "tab_size": 2,
//	    "build_dir": "$settings_path/build",
//	    "rulers": "#ERASE#",
//	}
//
// Deeper directories override shallower ones key by key. A value of
// "#ERASE#" removes the key from the session instead of setting it.
package config
