package redis

import "fmt"

const ns = "eventmarket:v1"

func KeyServices() string {
	return ns + ":catalog:services"
}

func KeyService(serviceID string) string {
	return fmt.Sprintf("%s:catalog:service:%s", ns, serviceID)
}

func KeyProviders() string {
	return ns + ":catalog:providers"
}

func KeySchedule(serviceID string) string {
	return fmt.Sprintf("%s:service:%s:schedule", ns, serviceID)
}

func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}

func KeyDashboard(customerID string) string {
	return fmt.Sprintf("%s:dashboard:%s", ns, customerID)
}

func KeySubmission(customerID, serviceID string) string {
	return fmt.Sprintf("%s:submission:%s:%s", ns, customerID, serviceID)
}

func ChannelCustomer(customerID string) string {
	return fmt.Sprintf("%s:customer:%s:changed", ns, customerID)
}
