package models

import "time"

// DemoEvents returns the fixed demo set written into an empty store on
// first startup so the dashboard never renders blank.
func DemoEvents() []SecurityEvent {
	return []SecurityEvent{
		{
			ID:          "1",
			Timestamp:   time.Date(2023, 10, 27, 10, 15, 30, 0, time.UTC),
			AgentName:   "Web-Server-01",
			RuleID:      "5710",
			Description: "sshd: Attempt to login using a non-existent user",
			Severity:    SeverityMedium,
			SourceIP:    "192.168.1.50",
			Location:    "/var/log/auth.log",
			FullLog:     "Oct 27 10:15:30 Web-Server-01 sshd[1234]: Invalid user admin from 192.168.1.50 port 45678",
			Origin:      OriginSeed,
		},
		{
			ID:          "2",
			Timestamp:   time.Date(2023, 10, 27, 10, 16, 45, 0, time.UTC),
			AgentName:   "DB-Prod-Primary",
			RuleID:      "1002",
			Description: "Unknown problem somewhere in the system.",
			Severity:    SeverityLow,
			SourceIP:    "10.0.0.5",
			Location:    "Wazuh-Manager",
			FullLog:     "Internal error in database sync",
			Origin:      OriginSeed,
		},
		{
			ID:          "3",
			Timestamp:   time.Date(2023, 10, 27, 10, 18, 12, 0, time.UTC),
			AgentName:   "Workstation-HR-05",
			RuleID:      "5501",
			Description: "Login session opened",
			Severity:    SeverityLow,
			SourceIP:    "172.16.5.10",
			Location:    "/var/log/auth.log",
			FullLog:     "pam_unix(sshd:session): session opened for user hr_manager by (uid=0)",
			Origin:      OriginSeed,
		},
		{
			ID:          "4",
			Timestamp:   time.Date(2023, 10, 27, 10, 20, 0, 0, time.UTC),
			AgentName:   "Web-Server-01",
			RuleID:      "5712",
			Description: "sshd: brute force trying to get access to the system.",
			Severity:    SeverityHigh,
			SourceIP:    "45.12.34.156",
			Location:    "/var/log/auth.log",
			FullLog:     "Oct 27 10:20:00 Web-Server-01 sshd[1234]: Failed password for root from 45.12.34.156 port 55432 ssh2",
			Origin:      OriginSeed,
		},
		{
			ID:          "5",
			Timestamp:   time.Date(2023, 10, 27, 10, 22, 15, 0, time.UTC),
			AgentName:   "Firewall-Edge",
			RuleID:      "87105",
			Description: "Large amount of data sent to an external IP",
			Severity:    SeverityCritical,
			SourceIP:    "10.0.0.15",
			Location:    "Cisco-ASA",
			FullLog:     "Connection initiated from 10.0.0.15 to 203.0.113.10 with 5GB data transfer",
			Origin:      OriginSeed,
		},
	}
}
