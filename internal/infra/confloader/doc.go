// Package confloader loads configuration with koanf and watches the
// configuration file with fsnotify.
//
// Priority, highest first:
//
//  1. Environment variables (MINIKV_SECTION_KEY)
//  2. The YAML configuration file
//  3. Defaults already present in the target struct
package confloader
