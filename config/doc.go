// Package config loads run settings from YAML and sets up logging.
//
// A config file may hold the settings at the top level or under an
// extraction key:
//
//	extraction:
//	  chunk_size: 6000
//	  chunk_strategy: chapters
//	  retry_max: "5"
//	  llm_merge: yes
//	  tags: [saga, draft]
//
// Scalars are coerced leniently: numbers may be quoted, booleans accept
// yes/no/on/off/1/0, and retry_delay takes a duration ("2s") or seconds.
// A value that cannot be coerced keeps its default.
package config
