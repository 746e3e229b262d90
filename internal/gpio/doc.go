// Package gpio implements the controller's output drivers on Raspberry Pi
// pins via go-rpio: binary LED outputs and a PWM square-wave buzzer, plus
// no-op fallbacks for hosts without usable GPIO.
package gpio
