// Package demo is a small reference site built on the framework: public
// home page, registration, login with an optional remember-me cookie, and a
// profile page behind authentication. It shows the intended wiring of
// dispatcher, session manager, auth manager, and the SQLite identity store.
package demo
