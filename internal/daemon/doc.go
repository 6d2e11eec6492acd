// Package daemon provides the main orchestration for nowplayingd.
package daemon
