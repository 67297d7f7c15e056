// Package billing holds the subscription model of the booking application.
//
// A Plan is a static catalog entry describing what a subscriber may book:
// how many bookings per calendar month, how long each booking may last and
// how far ahead it may start. A Subscription ties one profile to a plan and
// mirrors the state of the matching subscription at the payment provider.
//
// Payment itself is handled by the provider. This package only decides which
// plan is in effect at a given time.
package billing
